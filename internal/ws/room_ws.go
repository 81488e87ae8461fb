package ws

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"stranger-chat-service/internal/middleware"
	"stranger-chat-service/internal/observability"
	"stranger-chat-service/internal/repositories"
)

// RoomWebSocketHandler upgrades room subscription connections.
type RoomWebSocketHandler struct {
	hub       *Hub
	roomRepo  repositories.RoomRepository
	jwtSecret string
}

// NewRoomWebSocketHandler constructs a RoomWebSocketHandler.
func NewRoomWebSocketHandler(hub *Hub, roomRepo repositories.RoomRepository, jwtSecret string) *RoomWebSocketHandler {
	return &RoomWebSocketHandler{hub: hub, roomRepo: roomRepo, jwtSecret: jwtSecret}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authenticates the caller, verifies room membership against the store
// and registers the connection. The stream carries only this room's events and
// ends when the room is destroyed.
func (h *RoomWebSocketHandler) Handle(c *gin.Context) {
	roomID := c.Param("room_id")
	if _, err := uuid.Parse(roomID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	ctx, span := otel.Tracer("stranger-chat-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
		if token != "" {
			token = "Bearer " + token
		}
	}

	userID, err := h.validateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	member, err := h.roomRepo.IsParticipant(c.Request.Context(), roomID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load room"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a room participant"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      uuid.NewString(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(roomID, conn, info)

	headers := observability.BuildHeaders(requestID, traceID)
	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	_ = observability.PublishEvent(ctx, "ws_events.rooms", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload:   wsEventPayload(roomID, "ws_connect", info, 0, ""),
	}, headers)

	// Inbound frames are ignored; clients send messages over HTTP. The read
	// loop exists to detect disconnects and clean up.
	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveClient(roomID, conn)
			observability.DecWSActive()
			observability.IncWSEvent("ws_disconnect")
			_ = observability.PublishEvent(ctx, "ws_events.rooms", observability.EventEnvelope{
				EventType: "ws_events",
				EventName: "ws_disconnect",
				Payload:   wsEventPayload(roomID, "ws_disconnect", info, time.Since(info.ConnectedAt), closeReason),
			}, headers)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("ws_error")
					_ = observability.PublishEvent(ctx, "ws_events.rooms", observability.EventEnvelope{
						EventType: "ws_events",
						EventName: "ws_error",
						Payload:   wsEventPayload(roomID, "ws_error", info, time.Since(info.ConnectedAt), closeReason),
					}, headers)
				}
				return
			}
		}
	}()
}

func (h *RoomWebSocketHandler) validateToken(header string) (string, error) {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return middleware.ValidateToken(header[len(prefix):], h.jwtSecret)
	}
	return "", errors.New("missing bearer token")
}
