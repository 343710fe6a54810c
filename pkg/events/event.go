package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeSessionCreated = "session_created"
	EventTypeSessionDeleted = "session_deleted"
)

// Event defines the contract for all system events published to the bus.
type Event interface {
	// EventType returns the unique code for this event (e.g. "session_created").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewSessionCreated marks the birth of a chat session.
func NewSessionCreated(sessionId uuid.UUID, mode string) Event {
	return BaseEvent{
		Type: EventTypeSessionCreated,
		Data: map[string]interface{}{
			"session_id": sessionId.String(),
			"mode":       mode,
		},
		OccurredAt: time.Now(),
	}
}

// NewSessionDeleted marks the removal of a chat session.
func NewSessionDeleted(sessionId uuid.UUID) Event {
	return BaseEvent{
		Type: EventTypeSessionDeleted,
		Data: map[string]interface{}{
			"session_id": sessionId.String(),
		},
		OccurredAt: time.Now(),
	}
}
