package models

import "time"

// Message is one chat line. Messages are append-only and disappear with their
// room via ON DELETE CASCADE; there is no edit or single-message delete.
type Message struct {
	ID        int       `db:"id" json:"id"`
	RoomID    string    `db:"room_id" json:"room_id"`
	SenderID  string    `db:"sender_id" json:"sender_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Room event types delivered over the websocket stream.
const (
	EventMessage    = "message"
	EventRoomClosed = "room_closed"
)

// RoomEvent is broadcasted through websockets to a room's participants.
type RoomEvent struct {
	Type    string   `json:"type"`
	RoomID  string   `json:"room_id"`
	Message *Message `json:"message,omitempty"`
}
