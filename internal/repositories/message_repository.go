package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"stranger-chat-service/internal/models"
)

// MessageRepository defines interactions for room messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, roomID, senderID, content string) (models.Message, error)
	ListRoomMessages(ctx context.Context, roomID string) ([]models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a message in a room.
func (r *MessageRepo) CreateMessage(ctx context.Context, roomID, senderID, content string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO stranger_messages (room_id, sender_id, content)
        VALUES ($1, $2, $3)
        RETURNING id, room_id, sender_id, content, created_at`, roomID, senderID, content).
		Scan(&msg.ID, &msg.RoomID, &msg.SenderID, &msg.Content, &msg.CreatedAt)
	return msg, err
}

// ListRoomMessages returns the room's messages in insertion order.
func (r *MessageRepo) ListRoomMessages(ctx context.Context, roomID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, room_id, sender_id, content, created_at
        FROM stranger_messages
        WHERE room_id=$1
        ORDER BY created_at ASC`, roomID)
	return msgs, err
}
