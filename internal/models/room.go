package models

import "time"

// Room is an ephemeral two-party stranger chat. Rooms are deleted outright when
// either participant ends the chat; there is no closed-but-readable state.
type Room struct {
	ID        string    `db:"id" json:"id"`
	UserA     string    `db:"user_a" json:"user_a"`
	UserB     string    `db:"user_b" json:"user_b"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// HasParticipant reports whether the user is one of the room's two sides.
func (r Room) HasParticipant(userID string) bool {
	return r.UserA == userID || r.UserB == userID
}
