package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"stranger-chat-service/internal/models"
)

// QueueRepository abstracts the durable waiting-user set.
type QueueRepository interface {
	Enqueue(ctx context.Context, userID string) error
	Remove(ctx context.Context, userID string) (bool, error)
	Candidates(ctx context.Context, excludeUserID string, limit int) ([]models.QueueEntry, error)
}

// QueueRepo is a sqlx implementation of QueueRepository.
type QueueRepo struct {
	db *sqlx.DB
}

// NewQueueRepo constructs a QueueRepo.
func NewQueueRepo(db *sqlx.DB) *QueueRepo {
	return &QueueRepo{db: db}
}

// Enqueue adds the user to the waiting set. Callers remove their own entry
// first, so a conflicting row can only be a leftover from a crashed request;
// keeping it preserves the original join time.
func (r *QueueRepo) Enqueue(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO match_queue (user_id) VALUES ($1)
        ON CONFLICT (user_id) DO NOTHING`, userID)
	return err
}

// Remove deletes the user's waiting entry and reports whether a row existed.
// The row count is what makes claims race-safe: of two concurrent deletes for
// the same user, only one observes an affected row.
func (r *QueueRepo) Remove(ctx context.Context, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM match_queue WHERE user_id=$1`, userID)
	if err != nil {
		return false, err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Candidates returns the oldest waiting entries excluding the caller, capped to
// a small lookahead window. Staleness is filtered by the caller at read time.
func (r *QueueRepo) Candidates(ctx context.Context, excludeUserID string, limit int) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	err := r.db.SelectContext(ctx, &entries, `SELECT user_id, created_at FROM match_queue
        WHERE user_id <> $1
        ORDER BY created_at ASC
        LIMIT $2`, excludeUserID, limit)
	return entries, err
}
