package ws

import "time"

// ConnInfo carries identity and trace context for one websocket connection,
// used when emitting lifecycle events.
type ConnInfo struct {
	ConnID      string
	UserID      string
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
