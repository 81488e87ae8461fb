package realtime

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"stranger-chat-service/internal/models"
	"stranger-chat-service/internal/ws"
)

const eventChannel = "stranger:room-events"

// Broadcaster delivers room events to subscribed participants.
type Broadcaster interface {
	RoomMessage(ctx context.Context, msg models.Message)
	RoomClosed(ctx context.Context, roomID string)
}

// NewBroadcaster returns a Redis-backed broadcaster when an address is
// configured and reachable, otherwise a local-only one. The Redis path lets
// multiple server instances share one room: events published by any instance
// reach the websocket connections of all of them.
func NewBroadcaster(redisAddr string, hub *ws.Hub) Broadcaster {
	if redisAddr == "" {
		log.Println("redis disabled, room events stay instance-local")
		return &localBroadcaster{hub: hub}
	}

	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis unreachable, room events stay instance-local: %v", err)
		return &localBroadcaster{hub: hub}
	}

	bridge := &redisBroadcaster{client: client, hub: hub}
	go bridge.listen()
	log.Printf("redis room-event bridge connected addr=%s", redisAddr)
	return bridge
}

// localBroadcaster applies events directly to the in-process hub.
type localBroadcaster struct {
	hub *ws.Hub
}

func (b *localBroadcaster) RoomMessage(_ context.Context, msg models.Message) {
	b.hub.BroadcastMessage(msg.RoomID, msg)
}

func (b *localBroadcaster) RoomClosed(_ context.Context, roomID string) {
	b.hub.BroadcastRoomClosed(roomID)
}

// redisBroadcaster publishes events to a shared channel; every instance's
// listener (including this one's) applies them to its local hub. Local
// delivery therefore happens via the loopback, never directly, so an event is
// applied exactly once per instance.
type redisBroadcaster struct {
	client *redis.Client
	hub    *ws.Hub
}

func (b *redisBroadcaster) RoomMessage(ctx context.Context, msg models.Message) {
	b.publish(ctx, models.RoomEvent{Type: models.EventMessage, RoomID: msg.RoomID, Message: &msg})
}

func (b *redisBroadcaster) RoomClosed(ctx context.Context, roomID string) {
	b.publish(ctx, models.RoomEvent{Type: models.EventRoomClosed, RoomID: roomID})
}

func (b *redisBroadcaster) publish(ctx context.Context, event models.RoomEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := b.client.Publish(ctx, eventChannel, payload).Err(); err != nil {
		log.Printf("redis publish failed, delivering locally: %v", err)
		b.apply(event)
	}
}

func (b *redisBroadcaster) listen() {
	ctx := context.Background()
	pubsub := b.client.Subscribe(ctx, eventChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var event models.RoomEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("bad room event payload: %v", err)
			continue
		}
		b.apply(event)
	}
}

func (b *redisBroadcaster) apply(event models.RoomEvent) {
	switch event.Type {
	case models.EventMessage:
		if event.Message != nil {
			b.hub.BroadcastMessage(event.RoomID, *event.Message)
		}
	case models.EventRoomClosed:
		b.hub.BroadcastRoomClosed(event.RoomID)
	}
}
