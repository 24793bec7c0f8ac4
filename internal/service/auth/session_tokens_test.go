package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/obsolescence-tutor/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret-that-is-long-enough-for-testing"
	wrongSecret = "wrong-secret-that-is-long-enough-for-testing"
)

var fixedTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, lifetime time.Duration, at time.Time) *hmacSessionTokenService {
	t.Helper()
	svc, err := newSessionTokenService(testSecret, lifetime, func() time.Time { return at })
	require.NoError(t, err)
	return svc
}

func signRaw(t *testing.T, method jwt.SigningMethod, secret string, claims jwtCustomClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestNewSessionTokenService(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		svc, err := NewSessionTokenService(config.AuthConfig{
			SessionSecret:        testSecret,
			TokenLifetimeMinutes: 60,
		})
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("short secret", func(t *testing.T) {
		t.Parallel()
		svc, err := NewSessionTokenService(config.AuthConfig{
			SessionSecret:        "too-short",
			TokenLifetimeMinutes: 60,
		})
		assert.ErrorIs(t, err, ErrWeakSecret)
		assert.Nil(t, svc)
	})

	t.Run("zero lifetime", func(t *testing.T) {
		t.Parallel()
		_, err := NewSessionTokenService(config.AuthConfig{
			SessionSecret:        testSecret,
			TokenLifetimeMinutes: 0,
		})
		assert.Error(t, err)
	})
}

func TestIssue(t *testing.T) {
	t.Parallel()

	lifetime := 60 * time.Minute
	sessionID := uuid.New()
	svc := newTestService(t, lifetime, fixedTime)

	token, err := svc.Issue(context.Background(), sessionID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, sessionID, claims.SessionID)
	assert.Equal(t, SessionTokenType, claims.TokenType)
	assert.Equal(t, sessionID.String(), claims.Subject)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(lifetime).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)

	other, err := svc.Issue(context.Background(), sessionID)
	require.NoError(t, err)
	otherClaims, err := svc.Validate(context.Background(), other)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, otherClaims.ID, "each token gets its own jti")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	lifetime := 60 * time.Minute
	sessionID := uuid.New()

	issueAt := func(t *testing.T, at time.Time) string {
		t.Helper()
		token, err := newTestService(t, lifetime, at).Issue(context.Background(), sessionID)
		require.NoError(t, err)
		return token
	}

	tests := []struct {
		name      string
		setupFunc func(t *testing.T) (*hmacSessionTokenService, string)
		wantErr   error
	}{
		{
			name: "valid token",
			setupFunc: func(t *testing.T) (*hmacSessionTokenService, string) {
				return newTestService(t, lifetime, fixedTime), issueAt(t, fixedTime)
			},
		},
		{
			name: "expired within clock skew",
			setupFunc: func(t *testing.T) (*hmacSessionTokenService, string) {
				svc := newTestService(t, lifetime, fixedTime.Add(lifetime+time.Minute))
				return svc, issueAt(t, fixedTime)
			},
		},
		{
			name: "expired token",
			setupFunc: func(t *testing.T) (*hmacSessionTokenService, string) {
				svc := newTestService(t, lifetime, fixedTime.Add(lifetime+time.Hour))
				return svc, issueAt(t, fixedTime)
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "not yet valid",
			setupFunc: func(t *testing.T) (*hmacSessionTokenService, string) {
				svc := newTestService(t, lifetime, fixedTime.Add(-10*time.Minute))
				return svc, issueAt(t, fixedTime)
			},
			wantErr: ErrTokenNotYetValid,
		},
		{
			name: "invalid signature",
			setupFunc: func(t *testing.T) (*hmacSessionTokenService, string) {
				svc, err := newSessionTokenService(wrongSecret, lifetime, func() time.Time { return fixedTime })
				require.NoError(t, err)
				return svc, issueAt(t, fixedTime)
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "malformed token",
			setupFunc: func(t *testing.T) (*hmacSessionTokenService, string) {
				return newTestService(t, lifetime, fixedTime), "this.is.not.a.valid.jwt.token"
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "empty token",
			setupFunc: func(t *testing.T) (*hmacSessionTokenService, string) {
				return newTestService(t, lifetime, fixedTime), ""
			},
			wantErr: ErrMissingToken,
		},
		{
			name: "wrong token type",
			setupFunc: func(t *testing.T) (*hmacSessionTokenService, string) {
				token := signRaw(t, jwt.SigningMethodHS256, testSecret, jwtCustomClaims{
					SessionID: sessionID,
					TokenType: "access",
					RegisteredClaims: jwt.RegisteredClaims{
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(lifetime)),
					},
				})
				return newTestService(t, lifetime, fixedTime), token
			},
			wantErr: ErrWrongTokenType,
		},
		{
			name: "missing session id",
			setupFunc: func(t *testing.T) (*hmacSessionTokenService, string) {
				token := signRaw(t, jwt.SigningMethodHS256, testSecret, jwtCustomClaims{
					TokenType: SessionTokenType,
					RegisteredClaims: jwt.RegisteredClaims{
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(lifetime)),
					},
				})
				return newTestService(t, lifetime, fixedTime), token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "unexpected signing method",
			setupFunc: func(t *testing.T) (*hmacSessionTokenService, string) {
				token := signRaw(t, jwt.SigningMethodHS384, testSecret, jwtCustomClaims{
					SessionID: sessionID,
					TokenType: SessionTokenType,
					RegisteredClaims: jwt.RegisteredClaims{
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(lifetime)),
					},
				})
				return newTestService(t, lifetime, fixedTime), token
			},
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, token := tt.setupFunc(t)
			claims, err := svc.Validate(context.Background(), token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, claims)
			assert.Equal(t, sessionID, claims.SessionID)
		})
	}
}
