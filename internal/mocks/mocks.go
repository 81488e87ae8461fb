package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"stranger-chat-service/internal/models"
	"stranger-chat-service/internal/realtime"
	"stranger-chat-service/internal/repositories"
)

type QueueRepositoryMock struct {
	mock.Mock
}

func (m *QueueRepositoryMock) Enqueue(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *QueueRepositoryMock) Remove(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *QueueRepositoryMock) Candidates(ctx context.Context, excludeUserID string, limit int) ([]models.QueueEntry, error) {
	args := m.Called(ctx, excludeUserID, limit)
	var entries []models.QueueEntry
	if val := args.Get(0); val != nil {
		entries = val.([]models.QueueEntry)
	}
	return entries, args.Error(1)
}

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) ClaimAndCreate(ctx context.Context, callerID, partnerID string) (models.Room, error) {
	args := m.Called(ctx, callerID, partnerID)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) GetRoom(ctx context.Context, roomID string) (models.Room, error) {
	args := m.Called(ctx, roomID)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) IsParticipant(ctx context.Context, roomID, userID string) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *RoomRepositoryMock) DeleteRoom(ctx context.Context, roomID string) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, roomID, senderID, content string) (models.Message, error) {
	args := m.Called(ctx, roomID, senderID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListRoomMessages(ctx context.Context, roomID string) ([]models.Message, error) {
	args := m.Called(ctx, roomID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type ProfileRepositoryMock struct {
	mock.Mock
}

func (m *ProfileRepositoryMock) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	args := m.Called(ctx, userID)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

type BroadcasterMock struct {
	mock.Mock
}

func (m *BroadcasterMock) RoomMessage(ctx context.Context, msg models.Message) {
	m.Called(ctx, msg)
}

func (m *BroadcasterMock) RoomClosed(ctx context.Context, roomID string) {
	m.Called(ctx, roomID)
}

var _ repositories.QueueRepository = (*QueueRepositoryMock)(nil)
var _ repositories.RoomRepository = (*RoomRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.ProfileRepository = (*ProfileRepositoryMock)(nil)
var _ realtime.Broadcaster = (*BroadcasterMock)(nil)
