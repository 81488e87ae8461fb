package models

import "time"

// QueueEntry is one user waiting for a stranger match. A user has at most one
// entry; removing it is how a partner claims them.
type QueueEntry struct {
	UserID   string    `db:"user_id" json:"user_id"`
	JoinedAt time.Time `db:"created_at" json:"joined_at"`
}
