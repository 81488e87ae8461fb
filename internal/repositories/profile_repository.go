package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"stranger-chat-service/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository reads user profiles. The onboarding flow writes them; this
// service only needs birthday and verification status for the eligibility gate.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (models.Profile, error)
}

// ProfileRepo is a sqlx implementation of ProfileRepository.
type ProfileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo constructs a ProfileRepo.
func NewProfileRepo(db *sqlx.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// GetProfile fetches a profile by user id.
func (r *ProfileRepo) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	var profile models.Profile
	err := r.db.GetContext(ctx, &profile, `SELECT id, alias, birthday, verification_status, created_at
        FROM profiles WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	return profile, err
}
