package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stranger-chat-service/internal/middleware"
	"stranger-chat-service/internal/observability"
	"stranger-chat-service/internal/realtime"
	"stranger-chat-service/internal/repositories"
	"stranger-chat-service/internal/telemetry"
)

// RoomHandler manages room and message endpoints. Authorization is always
// re-checked against the stored room, never taken from client claims.
type RoomHandler struct {
	roomRepo    repositories.RoomRepository
	messageRepo repositories.MessageRepository
	broadcaster realtime.Broadcaster
	emitter     *telemetry.AuditEmitter
}

// NewRoomHandler builds a RoomHandler.
func NewRoomHandler(roomRepo repositories.RoomRepository, messageRepo repositories.MessageRepository, broadcaster realtime.Broadcaster, emitter *telemetry.AuditEmitter) *RoomHandler {
	return &RoomHandler{roomRepo: roomRepo, messageRepo: messageRepo, broadcaster: broadcaster, emitter: emitter}
}

// GetRoomMessages returns the room's message history in insertion order.
func (h *RoomHandler) GetRoomMessages(c *gin.Context) {
	roomID := c.Param("room_id")
	userID := middleware.UserID(c)

	if !h.requireParticipant(c, roomID, userID) {
		return
	}

	msgs, err := h.messageRepo.ListRoomMessages(c.Request.Context(), roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostMessage stores a message and broadcasts it to both participants.
func (h *RoomHandler) PostMessage(c *gin.Context) {
	roomID := c.Param("room_id")
	userID := middleware.UserID(c)

	if !h.requireParticipant(c, roomID, userID) {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messageRepo.CreateMessage(c.Request.Context(), roomID, userID, req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	h.broadcaster.RoomMessage(c.Request.Context(), msg)
	c.JSON(http.StatusCreated, msg)
}

// EndRoom destroys the room for both sides ("skip"). Messages go with it via
// cascade and the other participant learns about it through the room-closed
// event. There is no one-sided leave.
func (h *RoomHandler) EndRoom(c *gin.Context) {
	roomID := c.Param("room_id")
	userID := middleware.UserID(c)

	if !h.requireParticipant(c, roomID, userID) {
		return
	}

	if err := h.roomRepo.DeleteRoom(c.Request.Context(), roomID); err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			// The other participant closed it concurrently.
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not end chat"})
		return
	}

	h.broadcaster.RoomClosed(c.Request.Context(), roomID)
	observability.IncRoomClosed()
	h.emitter.Emit(c.Request.Context(), "INFO", "room closed room="+roomID, requestIDFromContext(c), &userID)
	c.Status(http.StatusNoContent)
}

// requireParticipant loads the room and rejects callers who are not one of its
// two participants. Writes the error response itself and reports whether the
// request may proceed.
func (h *RoomHandler) requireParticipant(c *gin.Context, roomID, userID string) bool {
	room, err := h.roomRepo.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load room"})
		return false
	}
	if !room.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a room participant"})
		return false
	}
	return true
}
