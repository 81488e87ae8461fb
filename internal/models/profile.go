package models

import "time"

// Verification states as stored on the profile row. The onboarding and admin
// review flows own this column; the chat service only reads it.
const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

// Profile holds the subset of the user profile the matchmaking service needs.
type Profile struct {
	ID                 string    `db:"id" json:"id"`
	Alias              string    `db:"alias" json:"alias"`
	Birthday           time.Time `db:"birthday" json:"birthday"`
	VerificationStatus string    `db:"verification_status" json:"verification_status"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}
