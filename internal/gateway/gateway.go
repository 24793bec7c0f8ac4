package gateway

import "context"

// Gateway opens conversation sessions against a generative-language model.
// This interface serves as a boundary between the application core and
// external AI/LLM services, following the hexagonal architecture pattern.
type Gateway interface {
	// NewSession creates a conversation pinned to SystemInstruction and the
	// reply shape described in this package. Errors wrap ErrInvalidConfig
	// or ErrTransientFailure.
	NewSession(ctx context.Context) (Session, error)
}

// Session is a stateful, multi-turn conversation with the model.
type Session interface {
	// Send delivers one user message and returns the raw model text, which
	// is expected (but not guaranteed) to be a JSON reply document.
	Send(ctx context.Context, message string) (string, error)
}
