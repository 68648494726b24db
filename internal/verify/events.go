package verify

import (
	"time"

	"github.com/google/uuid"
)

// EventType labels session events published to observers.
type EventType string

const (
	EventState      EventType = "state"
	EventGeofence   EventType = "geofence"
	EventCheckpoint EventType = "checkpoint"
	EventResult     EventType = "result"
	EventError      EventType = "error"
)

// Event is one observable step of a verification session, streamed to the
// kiosk UI over WebSocket.
type Event struct {
	SessionID uuid.UUID      `json:"session_id"`
	Type      EventType      `json:"type"`
	State     string         `json:"state"`
	Timestamp time.Time      `json:"timestamp"`
	Detail    map[string]any `json:"detail,omitempty"`
}

// Notifier receives session events. A nil Notifier is valid and drops them.
type Notifier func(Event)
