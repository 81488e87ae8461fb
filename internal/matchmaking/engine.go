package matchmaking

import (
	"context"
	"errors"
	"log"
	"time"

	"stranger-chat-service/internal/repositories"
)

const (
	// Entries older than this are never claimed; their owner has most likely
	// given up polling. They are cleaned up lazily on the owner's next request.
	staleAfter = 60 * time.Second

	// How many queue entries to consider per attempt.
	candidateLookahead = 5
)

// Match statuses returned to the calling layer. Retry is the one recoverable
// race: the client is expected to re-invoke the request.
const (
	StatusMatched = "matched"
	StatusWaiting = "waiting"
	StatusRetry   = "retry"
)

// MatchResult is the outcome of one FindMatch invocation.
type MatchResult struct {
	Status string
	RoomID string
}

// Engine pairs waiting users. All coordination goes through the durable store's
// single-row operations; the engine itself holds no state, so any number of
// server instances can run it concurrently.
type Engine struct {
	queue repositories.QueueRepository
	rooms repositories.RoomRepository
	now   func() time.Time
}

// NewEngine constructs an Engine.
func NewEngine(queue repositories.QueueRepository, rooms repositories.RoomRepository) *Engine {
	return &Engine{queue: queue, rooms: rooms, now: time.Now}
}

// FindMatch attempts to pair the user with the oldest fresh waiting stranger.
// The caller's own entry is removed first so a re-request never leaves two
// entries behind. If no fresh candidate exists the caller joins the queue and
// gets StatusWaiting. If the chosen candidate is claimed by a concurrent
// request first, the caller gets StatusRetry and nothing else happens.
func (e *Engine) FindMatch(ctx context.Context, userID string) (MatchResult, error) {
	if _, err := e.queue.Remove(ctx, userID); err != nil {
		return MatchResult{}, err
	}

	candidates, err := e.queue.Candidates(ctx, userID, candidateLookahead)
	if err != nil {
		return MatchResult{}, err
	}

	cutoff := e.now().Add(-staleAfter)
	partnerID := ""
	for _, entry := range candidates {
		// The store already excludes the caller; never pair with self even if
		// a stray own entry slips through.
		if entry.UserID == userID {
			continue
		}
		if entry.JoinedAt.After(cutoff) {
			partnerID = entry.UserID
			break
		}
	}

	if partnerID == "" {
		if err := e.queue.Enqueue(ctx, userID); err != nil {
			return MatchResult{}, err
		}
		return MatchResult{Status: StatusWaiting}, nil
	}

	room, err := e.rooms.ClaimAndCreate(ctx, userID, partnerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPartnerClaimed) {
			return MatchResult{Status: StatusRetry}, nil
		}
		return MatchResult{}, err
	}

	log.Printf("match found: %s and %s in room %s", userID, partnerID, room.ID)
	return MatchResult{Status: StatusMatched, RoomID: room.ID}, nil
}

// Cancel removes the user's waiting entry. It is best-effort and succeeds even
// when no entry exists.
func (e *Engine) Cancel(ctx context.Context, userID string) error {
	_, err := e.queue.Remove(ctx, userID)
	return err
}
