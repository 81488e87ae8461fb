package matchmaking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stranger-chat-service/internal/mocks"
	"stranger-chat-service/internal/models"
	"stranger-chat-service/internal/repositories"
)

func newTestEngine(queue *mocks.QueueRepositoryMock, rooms *mocks.RoomRepositoryMock) *Engine {
	engine := NewEngine(queue, rooms)
	engine.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return engine
}

func entry(userID string, age time.Duration) models.QueueEntry {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return models.QueueEntry{UserID: userID, JoinedAt: base.Add(-age)}
}

func TestFindMatchEmptyQueueJoinsAndWaits(t *testing.T) {
	queue := new(mocks.QueueRepositoryMock)
	rooms := new(mocks.RoomRepositoryMock)
	engine := newTestEngine(queue, rooms)

	queue.On("Remove", mock.Anything, "alice").Return(false, nil).Once()
	queue.On("Candidates", mock.Anything, "alice", 5).Return([]models.QueueEntry(nil), nil).Once()
	queue.On("Enqueue", mock.Anything, "alice").Return(nil).Once()

	result, err := engine.FindMatch(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, StatusWaiting, result.Status)
	assert.Empty(t, result.RoomID)
	queue.AssertExpectations(t)
	rooms.AssertNotCalled(t, "ClaimAndCreate", mock.Anything, mock.Anything, mock.Anything)
}

func TestFindMatchPicksOldestFreshCandidate(t *testing.T) {
	queue := new(mocks.QueueRepositoryMock)
	rooms := new(mocks.RoomRepositoryMock)
	engine := newTestEngine(queue, rooms)

	queue.On("Remove", mock.Anything, "dora").Return(false, nil).Once()
	queue.On("Candidates", mock.Anything, "dora", 5).Return([]models.QueueEntry{
		entry("alice", 30*time.Second),
		entry("bob", 20*time.Second),
		entry("carol", 10*time.Second),
	}, nil).Once()
	rooms.On("ClaimAndCreate", mock.Anything, "dora", "alice").
		Return(models.Room{ID: "room-1", UserA: "dora", UserB: "alice", IsActive: true}, nil).Once()

	result, err := engine.FindMatch(context.Background(), "dora")
	require.NoError(t, err)
	require.Equal(t, StatusMatched, result.Status)
	require.Equal(t, "room-1", result.RoomID)
	queue.AssertExpectations(t)
	rooms.AssertExpectations(t)
}

func TestFindMatchSkipsStaleEntries(t *testing.T) {
	queue := new(mocks.QueueRepositoryMock)
	rooms := new(mocks.RoomRepositoryMock)
	engine := newTestEngine(queue, rooms)

	// alice waited past the freshness window; bob is next in FIFO order.
	queue.On("Remove", mock.Anything, "dora").Return(false, nil).Once()
	queue.On("Candidates", mock.Anything, "dora", 5).Return([]models.QueueEntry{
		entry("alice", 2*time.Minute),
		entry("bob", 10*time.Second),
	}, nil).Once()
	rooms.On("ClaimAndCreate", mock.Anything, "dora", "bob").
		Return(models.Room{ID: "room-2"}, nil).Once()

	result, err := engine.FindMatch(context.Background(), "dora")
	require.NoError(t, err)
	require.Equal(t, StatusMatched, result.Status)
	rooms.AssertExpectations(t)
}

func TestFindMatchOnlyStaleCandidatesWaits(t *testing.T) {
	queue := new(mocks.QueueRepositoryMock)
	rooms := new(mocks.RoomRepositoryMock)
	engine := newTestEngine(queue, rooms)

	queue.On("Remove", mock.Anything, "dora").Return(false, nil).Once()
	queue.On("Candidates", mock.Anything, "dora", 5).Return([]models.QueueEntry{
		entry("alice", 61*time.Second),
	}, nil).Once()
	queue.On("Enqueue", mock.Anything, "dora").Return(nil).Once()

	result, err := engine.FindMatch(context.Background(), "dora")
	require.NoError(t, err)
	require.Equal(t, StatusWaiting, result.Status)
	queue.AssertExpectations(t)
	rooms.AssertNotCalled(t, "ClaimAndCreate", mock.Anything, mock.Anything, mock.Anything)
}

func TestFindMatchLostClaimReturnsRetry(t *testing.T) {
	queue := new(mocks.QueueRepositoryMock)
	rooms := new(mocks.RoomRepositoryMock)
	engine := newTestEngine(queue, rooms)

	queue.On("Remove", mock.Anything, "dora").Return(false, nil).Once()
	queue.On("Candidates", mock.Anything, "dora", 5).Return([]models.QueueEntry{
		entry("alice", 5*time.Second),
	}, nil).Once()
	rooms.On("ClaimAndCreate", mock.Anything, "dora", "alice").
		Return(models.Room{}, repositories.ErrPartnerClaimed).Once()

	result, err := engine.FindMatch(context.Background(), "dora")
	require.NoError(t, err)
	require.Equal(t, StatusRetry, result.Status)
	// Losing the race must not fall through to joining the queue; the caller
	// re-invokes the whole operation instead.
	queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestFindMatchCleansOwnEntryFirst(t *testing.T) {
	queue := new(mocks.QueueRepositoryMock)
	rooms := new(mocks.RoomRepositoryMock)
	engine := newTestEngine(queue, rooms)

	// A re-request while already queued removes the old entry before anything
	// else, so a user never appears twice.
	queue.On("Remove", mock.Anything, "alice").Return(true, nil).Once()
	queue.On("Candidates", mock.Anything, "alice", 5).Return([]models.QueueEntry(nil), nil).Once()
	queue.On("Enqueue", mock.Anything, "alice").Return(nil).Once()

	_, err := engine.FindMatch(context.Background(), "alice")
	require.NoError(t, err)
	queue.AssertExpectations(t)
}

func TestFindMatchNeverPairsWithSelf(t *testing.T) {
	queue := new(mocks.QueueRepositoryMock)
	rooms := new(mocks.RoomRepositoryMock)
	engine := newTestEngine(queue, rooms)

	// A stray own entry in the candidate list must be skipped, not claimed.
	queue.On("Remove", mock.Anything, "alice").Return(false, nil).Once()
	queue.On("Candidates", mock.Anything, "alice", 5).Return([]models.QueueEntry{
		entry("alice", 5*time.Second),
	}, nil).Once()
	queue.On("Enqueue", mock.Anything, "alice").Return(nil).Once()

	result, err := engine.FindMatch(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, StatusWaiting, result.Status)
	rooms.AssertNotCalled(t, "ClaimAndCreate", mock.Anything, mock.Anything, mock.Anything)
}

func TestFindMatchStoreErrorPropagates(t *testing.T) {
	queue := new(mocks.QueueRepositoryMock)
	rooms := new(mocks.RoomRepositoryMock)
	engine := newTestEngine(queue, rooms)

	queue.On("Remove", mock.Anything, "alice").Return(false, assert.AnError).Once()

	_, err := engine.FindMatch(context.Background(), "alice")
	require.Error(t, err)
}

func TestCancelWithoutEntrySucceeds(t *testing.T) {
	queue := new(mocks.QueueRepositoryMock)
	engine := newTestEngine(queue, new(mocks.RoomRepositoryMock))

	queue.On("Remove", mock.Anything, "alice").Return(false, nil).Once()

	require.NoError(t, engine.Cancel(context.Background(), "alice"))
	queue.AssertExpectations(t)
}
