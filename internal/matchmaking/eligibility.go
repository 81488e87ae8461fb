package matchmaking

import (
	"context"
	"errors"
	"time"

	"stranger-chat-service/internal/models"
	"stranger-chat-service/internal/repositories"
)

const minimumAge = 18

var (
	ErrProfileMissing       = errors.New("profile not found")
	ErrUnderage             = errors.New("age requirement not met")
	ErrVerificationPending  = errors.New("verification pending")
	ErrVerificationRejected = errors.New("verification rejected")
)

// Gate checks whether a user is allowed to enter matchmaking. Verification can
// flip between requests (admin approves or rejects a selfie), so the check
// always reads the profile fresh and is never cached.
type Gate struct {
	profiles repositories.ProfileRepository
	now      func() time.Time
}

// NewGate constructs a Gate.
func NewGate(profiles repositories.ProfileRepository) *Gate {
	return &Gate{profiles: profiles, now: time.Now}
}

// Check validates profile existence, age and verification status for the user.
// It is read-only and returns one of the package sentinel errors on failure.
func (g *Gate) Check(ctx context.Context, userID string) error {
	profile, err := g.profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return ErrProfileMissing
		}
		return err
	}

	if ageInYears(profile.Birthday, g.now()) < minimumAge {
		return ErrUnderage
	}

	switch profile.VerificationStatus {
	case models.VerificationApproved:
		return nil
	case models.VerificationRejected:
		return ErrVerificationRejected
	default:
		return ErrVerificationPending
	}
}

// ageInYears computes whole elapsed years from birthday to now.
func ageInYears(birthday, now time.Time) int {
	years := now.Year() - birthday.Year()
	anniversary := birthday.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}
