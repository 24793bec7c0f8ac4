package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionTokenType is the "type" claim carried by every session token.
const SessionTokenType = "session"

// SessionTokenService issues and validates the bearer tokens that bind a
// browser to its conversation.
type SessionTokenService interface {
	// Issue creates a signed token for the given conversation session.
	// Returns the token string or an error if signing fails.
	Issue(ctx context.Context, sessionID uuid.UUID) (string, error)

	// Validate checks the token signature, lifetime and type and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid, ErrWrongTokenType or
	// ErrInvalidToken when validation fails.
	Validate(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the validated content of a session token.
type Claims struct {
	// SessionID is the conversation the token grants access to.
	SessionID uuid.UUID `json:"sid,omitempty"`

	// TokenType is always SessionTokenType for tokens this service accepts.
	TokenType string `json:"type,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
