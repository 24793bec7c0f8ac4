package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/obsolescence-tutor/internal/service/auth"
)

// MockSessionTokenService implements auth.SessionTokenService for testing
type MockSessionTokenService struct {
	// IssueFn allows test cases to mock the Issue behavior
	IssueFn func(ctx context.Context, sessionID uuid.UUID) (string, error)

	// ValidateFn allows test cases to mock the Validate behavior
	ValidateFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Default values used when functions aren't explicitly defined
	Token       string
	Err         error
	ValidateErr error
	Claims      *auth.Claims
}

var _ auth.SessionTokenService = (*MockSessionTokenService)(nil)

// Issue implements the auth.SessionTokenService interface
func (m *MockSessionTokenService) Issue(ctx context.Context, sessionID uuid.UUID) (string, error) {
	if m.IssueFn != nil {
		return m.IssueFn(ctx, sessionID)
	}
	return m.Token, m.Err
}

// Validate implements the auth.SessionTokenService interface
func (m *MockSessionTokenService) Validate(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateFn != nil {
		return m.ValidateFn(ctx, tokenString)
	}
	return m.Claims, m.ValidateErr
}
