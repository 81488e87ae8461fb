package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stranger-chat-service/internal/mocks"
	"stranger-chat-service/internal/models"
	"stranger-chat-service/internal/repositories"
)

func setupRoomRouter(handler *RoomHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "alice")
		c.Next()
	})
	r.GET("/rooms/:room_id/messages", handler.GetRoomMessages)
	r.POST("/rooms/:room_id/messages", handler.PostMessage)
	r.DELETE("/rooms/:room_id", handler.EndRoom)
	return r
}

func activeRoom() models.Room {
	return models.Room{ID: "room-1", UserA: "alice", UserB: "bob", IsActive: true}
}

func TestGetRoomMessagesSuccess(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	handler := NewRoomHandler(rooms, messages, new(mocks.BroadcasterMock), nil)
	router := setupRoomRouter(handler)

	rooms.On("GetRoom", mock.Anything, "room-1").Return(activeRoom(), nil).Once()
	messages.On("ListRoomMessages", mock.Anything, "room-1").Return([]models.Message{
		{ID: 1, RoomID: "room-1", SenderID: "bob", Content: "hi"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms/room-1/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	rooms.AssertExpectations(t)
	messages.AssertExpectations(t)
}

func TestPostMessageSuccess(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	broadcaster := new(mocks.BroadcasterMock)
	handler := NewRoomHandler(rooms, messages, broadcaster, nil)
	router := setupRoomRouter(handler)

	msg := models.Message{ID: 7, RoomID: "room-1", SenderID: "alice", Content: "hi"}
	rooms.On("GetRoom", mock.Anything, "room-1").Return(activeRoom(), nil).Once()
	messages.On("CreateMessage", mock.Anything, "room-1", "alice", "hi").Return(msg, nil).Once()
	broadcaster.On("RoomMessage", mock.Anything, msg).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms/room-1/messages", bytes.NewBufferString(`{"content":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	messages.AssertExpectations(t)
	broadcaster.AssertExpectations(t)
}

func TestPostMessageNotParticipant(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	handler := NewRoomHandler(rooms, messages, new(mocks.BroadcasterMock), nil)
	router := setupRoomRouter(handler)

	room := models.Room{ID: "room-9", UserA: "bob", UserB: "carol"}
	rooms.On("GetRoom", mock.Anything, "room-9").Return(room, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms/room-9/messages", bytes.NewBufferString(`{"content":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	messages.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPostMessageRoomGone(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	handler := NewRoomHandler(rooms, new(mocks.MessageRepositoryMock), new(mocks.BroadcasterMock), nil)
	router := setupRoomRouter(handler)

	rooms.On("GetRoom", mock.Anything, "room-1").Return(models.Room{}, repositories.ErrRoomNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms/room-1/messages", bytes.NewBufferString(`{"content":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostMessageEmptyContent(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	handler := NewRoomHandler(rooms, new(mocks.MessageRepositoryMock), new(mocks.BroadcasterMock), nil)
	router := setupRoomRouter(handler)

	rooms.On("GetRoom", mock.Anything, "room-1").Return(activeRoom(), nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms/room-1/messages", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEndRoomSuccess(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	broadcaster := new(mocks.BroadcasterMock)
	handler := NewRoomHandler(rooms, new(mocks.MessageRepositoryMock), broadcaster, nil)
	router := setupRoomRouter(handler)

	rooms.On("GetRoom", mock.Anything, "room-1").Return(activeRoom(), nil).Once()
	rooms.On("DeleteRoom", mock.Anything, "room-1").Return(nil).Once()
	broadcaster.On("RoomClosed", mock.Anything, "room-1").Once()

	req := httptest.NewRequest(http.MethodDelete, "/rooms/room-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	rooms.AssertExpectations(t)
	broadcaster.AssertExpectations(t)
}

func TestEndRoomNotParticipant(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	broadcaster := new(mocks.BroadcasterMock)
	handler := NewRoomHandler(rooms, new(mocks.MessageRepositoryMock), broadcaster, nil)
	router := setupRoomRouter(handler)

	room := models.Room{ID: "room-9", UserA: "bob", UserB: "carol"}
	rooms.On("GetRoom", mock.Anything, "room-9").Return(room, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/rooms/room-9", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	rooms.AssertNotCalled(t, "DeleteRoom", mock.Anything, mock.Anything)
	broadcaster.AssertNotCalled(t, "RoomClosed", mock.Anything, mock.Anything)
}

func TestEndRoomAlreadyClosed(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	handler := NewRoomHandler(rooms, new(mocks.MessageRepositoryMock), new(mocks.BroadcasterMock), nil)
	router := setupRoomRouter(handler)

	// The partner skipped at the same moment: the room vanished between the
	// participant check and the delete.
	rooms.On("GetRoom", mock.Anything, "room-1").Return(activeRoom(), nil).Once()
	rooms.On("DeleteRoom", mock.Anything, "room-1").Return(repositories.ErrRoomNotFound).Once()

	req := httptest.NewRequest(http.MethodDelete, "/rooms/room-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	rooms.AssertExpectations(t)
}
