package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/obsolescence-tutor/internal/config"
	"github.com/phrazzld/obsolescence-tutor/internal/platform/logger"
)

const (
	minSecretLength  = 32
	defaultClockSkew = 2 * time.Minute
)

// hmacSessionTokenService is an implementation of SessionTokenService using HMAC-SHA signing.
type hmacSessionTokenService struct {
	signingKey    []byte
	tokenLifetime time.Duration
	timeFunc      func() time.Time // Injectable for testing
	clockSkew     time.Duration    // Allowed time difference when checking exp and nbf
}

// jwtCustomClaims defines the structure of JWT claims we use
type jwtCustomClaims struct {
	SessionID uuid.UUID `json:"sid"`
	TokenType string    `json:"type"`
	jwt.RegisteredClaims
}

// Ensure hmacSessionTokenService implements SessionTokenService interface
var _ SessionTokenService = (*hmacSessionTokenService)(nil)

// NewSessionTokenService creates a new session token service using HMAC-SHA signing.
//
// Parameters:
//   - cfg: the auth configuration holding the signing secret and token lifetime
//
// Returns:
//   - SessionTokenService: the token service
//   - error: ErrWeakSecret if the secret is shorter than 32 characters
func NewSessionTokenService(cfg config.AuthConfig) (SessionTokenService, error) {
	return newSessionTokenService(
		cfg.SessionSecret,
		time.Duration(cfg.TokenLifetimeMinutes)*time.Minute,
		time.Now,
	)
}

func newSessionTokenService(
	secret string,
	lifetime time.Duration,
	timeFunc func() time.Time,
) (*hmacSessionTokenService, error) {
	if len(secret) < minSecretLength {
		return nil, ErrWeakSecret
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %s", lifetime)
	}

	return &hmacSessionTokenService{
		signingKey:    []byte(secret),
		tokenLifetime: lifetime,
		timeFunc:      timeFunc,
		clockSkew:     defaultClockSkew,
	}, nil
}

// Issue creates a signed session token.
func (s *hmacSessionTokenService) Issue(ctx context.Context, sessionID uuid.UUID) (string, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	claims := jwtCustomClaims{
		SessionID: sessionID,
		TokenType: SessionTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenLifetime)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.signingKey)
	if err != nil {
		log.Error("failed to sign session token",
			"error", err,
			"session_id", sessionID,
			"signing_method", jwt.SigningMethodHS256.Name)
		return "", fmt.Errorf("failed to sign session token with HMAC-SHA256: %w", err)
	}

	return signedToken, nil
}

// Validate validates a session token and returns the claims if valid.
func (s *hmacSessionTokenService) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)

	if tokenString == "" {
		return nil, ErrMissingToken
	}

	now := s.timeFunc()
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time {
			return now
		}),
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtCustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		parserOpts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("session token validation failed: token expired", "error", err)
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("session token validation failed: token not yet valid", "error", err)
			return nil, ErrTokenNotYetValid
		default:
			log.Debug("session token validation failed",
				"error", err,
				"error_type", fmt.Sprintf("%T", err))
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		log.Debug("session token validation failed: invalid claims")
		return nil, ErrInvalidToken
	}

	if claims.TokenType != SessionTokenType {
		log.Debug("session token validation failed: wrong token type",
			"expected", SessionTokenType,
			"actual", claims.TokenType)
		return nil, ErrWrongTokenType
	}

	if claims.SessionID == uuid.Nil {
		log.Debug("session token validation failed: missing session id")
		return nil, ErrInvalidToken
	}

	result := &Claims{
		SessionID: claims.SessionID,
		TokenType: claims.TokenType,
		Subject:   claims.Subject,
		ID:        claims.ID,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}

	log.Debug("session token validated",
		"session_id", claims.SessionID,
		"token_id", claims.ID)

	return result, nil
}
