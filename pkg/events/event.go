package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SESSION_STARTED").
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

const (
	TypeSessionStarted = "SESSION_STARTED"
	TypeSessionEnded   = "SESSION_ENDED"
)

func NewSessionStarted(email string, at time.Time) BaseEvent {
	return BaseEvent{
		Type:       TypeSessionStarted,
		Data:       map[string]interface{}{"email": email, "occurred_at": at.UTC().Format(time.RFC3339)},
		OccurredAt: at,
	}
}

// NewSessionEnded records a logout. providerSignedOut is false when the
// identity provider call failed and only the local session was cleared.
func NewSessionEnded(email string, providerSignedOut bool, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeSessionEnded,
		Data: map[string]interface{}{
			"email":               email,
			"provider_signed_out": providerSignedOut,
			"occurred_at":         at.UTC().Format(time.RFC3339),
		},
		OccurredAt: at,
	}
}
