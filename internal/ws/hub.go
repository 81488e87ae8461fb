package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"stranger-chat-service/internal/models"
	"stranger-chat-service/internal/observability"
)

// roomClient is one registered connection. The mutex serializes writes: the
// underlying connection allows only one concurrent writer, while broadcasts
// arrive from any goroutine (HTTP handlers, the Redis listener).
type roomClient struct {
	info ConnInfo
	mu   sync.Mutex
}

func (c *roomClient) write(conn *websocket.Conn, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub maintains the websocket connections of active rooms on this instance.
// Delivery is filtered by room id: an event for one room never reaches
// connections registered to another.
type Hub struct {
	rooms map[string]map[*websocket.Conn]*roomClient
	mu    sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*websocket.Conn]*roomClient)}
}

// AddClient registers a websocket connection to a room.
func (h *Hub) AddClient(roomID string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*websocket.Conn]*roomClient)
	}
	h.rooms[roomID][conn] = &roomClient{info: info}
}

// RemoveClient removes a room websocket connection.
func (h *Hub) RemoveClient(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.rooms[roomID]; ok {
		delete(clients, conn)
		if len(clients) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// BroadcastMessage sends a new-message event to the room's connections.
func (h *Hub) BroadcastMessage(roomID string, msg models.Message) {
	event := models.RoomEvent{Type: models.EventMessage, RoomID: roomID, Message: &msg}
	h.broadcast(roomID, event)
}

// BroadcastRoomClosed notifies the room's connections that the room was
// destroyed, then drops them. The event is terminal: the stream ends here.
func (h *Hub) BroadcastRoomClosed(roomID string) {
	event := models.RoomEvent{Type: models.EventRoomClosed, RoomID: roomID}
	h.broadcast(roomID, event)

	h.mu.Lock()
	clients := h.rooms[roomID]
	delete(h.rooms, roomID)
	h.mu.Unlock()

	for conn := range clients {
		conn.Close()
	}
}

func (h *Hub) broadcast(roomID string, event models.RoomEvent) {
	h.mu.RLock()
	targets := make(map[*websocket.Conn]*roomClient, len(h.rooms[roomID]))
	for conn, client := range h.rooms[roomID] {
		targets[conn] = client
	}
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for conn, client := range targets {
		if err := client.write(conn, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.publishWriteError(roomID, client.info, err)
			h.RemoveClient(roomID, conn)
		}
	}
}

// RoomConnections reports how many connections a room currently has on this
// instance.
func (h *Hub) RoomConnections(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) publishWriteError(roomID string, info ConnInfo, err error) {
	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), "ws_events.rooms", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   wsEventPayload(roomID, "ws_error", info, time.Since(info.ConnectedAt), err.Error()),
	}, headers)
	observability.IncWSEvent("ws_error")
}

func wsEventPayload(roomID, event string, info ConnInfo, duration time.Duration, reason string) map[string]interface{} {
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"room_id":     roomID,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": duration.Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
}
