package events

import (
	"context"
	"log/slog"
)

// AuditLogger records every conversation event as a structured log line.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates an AuditLogger writing to logger.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger.With("component", "conversation_audit")}
}

// HandleEvent implements EventHandler.
func (a *AuditLogger) HandleEvent(ctx context.Context, event *ConversationEvent) error {
	a.logger.InfoContext(ctx, "conversation event",
		"event_id", event.ID,
		"event_type", event.Type,
		"session_id", event.SessionID,
		"payload_bytes", len(event.Payload))
	return nil
}
