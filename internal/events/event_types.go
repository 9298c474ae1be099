package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/skylink-gateway/internal/domain"
)

// EventType enumerates session lifecycle events.
type EventType string

const (
	EventSessionStarted    EventType = "session_started"
	EventSessionEnded      EventType = "session_ended"
	EventCredentialExpired EventType = "credential_expired"
)

// Event represents a session lifecycle event emitted by the session store.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New assembles an event with a fresh ID and timestamp.
func New(eventType EventType, sessionID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// SessionStartedPayload payload.
type SessionStartedPayload struct {
	Subject string      `json:"subject"`
	Role    domain.Role `json:"role"`
}

// SessionEndedPayload carries the navigation reset target. The session core
// never navigates itself; the transport layer interprets this.
type SessionEndedPayload struct {
	NavigateTo string `json:"navigate_to"`
}

// CredentialExpiredPayload payload for a purge of a stale credential.
type CredentialExpiredPayload struct {
	NavigateTo string `json:"navigate_to"`
}
