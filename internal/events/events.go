package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Conversation event types
const (
	// TypeTranscriptUpdated is emitted whenever messages, suggestions or the
	// loading flag of a session change.
	TypeTranscriptUpdated = "transcript_updated"

	// TypeQuizStarted is emitted when a reply switches the session into quiz mode.
	TypeQuizStarted = "quiz_started"

	// TypeQuizAdvanced is emitted when the deferred transition posts the next question.
	TypeQuizAdvanced = "quiz_advanced"

	// TypeQuizFinished is emitted when the final summary is posted.
	TypeQuizFinished = "quiz_finished"

	// TypeGatewayFailed is emitted when a model call fails and the session
	// falls back to an apology or an empty suggestion list.
	TypeGatewayFailed = "gateway_failed"

	// TypeSessionSnapshot is sent only to a feed subscriber when it connects.
	TypeSessionSnapshot = "session_snapshot"
)

// ConversationEvent describes a change to one conversation session.
type ConversationEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// SessionID identifies the conversation that changed
	SessionID uuid.UUID `json:"session_id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *ConversationEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewConversationEvent creates a new ConversationEvent with the specified type and payload.
func NewConversationEvent(sessionID uuid.UUID, eventType string, payload interface{}) (*ConversationEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &ConversationEvent{
		ID:        uuid.New(),
		SessionID: sessionID,
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *ConversationEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows controllers to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *ConversationEvent) error
}

// HandlerFunc adapts a function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *ConversationEvent) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *ConversationEvent) error {
	return f(ctx, event)
}
