package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"stranger-chat-service/internal/models"
)

var (
	ErrRoomNotFound = errors.New("room not found")

	// ErrPartnerClaimed means the candidate's queue entry was gone by the time
	// we tried to claim it: a concurrent request won the race.
	ErrPartnerClaimed = errors.New("partner already claimed")
)

// RoomRepository abstracts room persistence and the claim transaction.
type RoomRepository interface {
	ClaimAndCreate(ctx context.Context, callerID, partnerID string) (models.Room, error)
	GetRoom(ctx context.Context, roomID string) (models.Room, error)
	IsParticipant(ctx context.Context, roomID, userID string) (bool, error)
	DeleteRoom(ctx context.Context, roomID string) error
}

// RoomRepo is a sqlx implementation of RoomRepository.
type RoomRepo struct {
	db *sqlx.DB
}

// NewRoomRepo constructs a RoomRepo.
func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// ClaimAndCreate removes the partner's waiting entry and creates the room in a
// single transaction. The conditional delete is the only point of mutual
// exclusion between concurrent matchers; a zero row count means another caller
// claimed the partner first and the whole operation is abandoned. Running the
// room insert in the same transaction means a failed insert rolls the claim
// back instead of stranding the partner.
func (r *RoomRepo) ClaimAndCreate(ctx context.Context, callerID, partnerID string) (models.Room, error) {
	if callerID == partnerID {
		return models.Room{}, errors.New("cannot create room with self")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Room{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM match_queue WHERE user_id=$1`, partnerID)
	if err != nil {
		return models.Room{}, err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return models.Room{}, err
	}
	if count == 0 {
		return models.Room{}, ErrPartnerClaimed
	}

	var room models.Room
	if err := tx.QueryRowxContext(ctx, `INSERT INTO stranger_rooms (user_a, user_b)
        VALUES ($1, $2)
        RETURNING id, user_a, user_b, is_active, created_at`, callerID, partnerID).
		Scan(&room.ID, &room.UserA, &room.UserB, &room.IsActive, &room.CreatedAt); err != nil {
		return models.Room{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Room{}, err
	}
	return room, nil
}

// GetRoom fetches a room by id.
func (r *RoomRepo) GetRoom(ctx context.Context, roomID string) (models.Room, error) {
	var room models.Room
	err := r.db.GetContext(ctx, &room, `SELECT id, user_a, user_b, is_active, created_at
        FROM stranger_rooms WHERE id=$1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, err
}

// IsParticipant checks whether the user is one of the room's two participants.
func (r *RoomRepo) IsParticipant(ctx context.Context, roomID, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM stranger_rooms
        WHERE id=$1 AND (user_a=$2 OR user_b=$2))`, roomID, userID)
	return exists, err
}

// DeleteRoom removes the room; messages go with it via ON DELETE CASCADE.
func (r *RoomRepo) DeleteRoom(ctx context.Context, roomID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stranger_rooms WHERE id=$1`, roomID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrRoomNotFound
	}
	return nil
}
