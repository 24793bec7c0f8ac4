package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/obsolescence-tutor/internal/api/shared"
	"github.com/phrazzld/obsolescence-tutor/internal/platform/logger"
	"github.com/phrazzld/obsolescence-tutor/internal/service/auth"
)

// TokenQueryParam carries the session token on requests that cannot set
// headers, such as the browser WebSocket handshake.
const TokenQueryParam = "token"

// AuthMiddleware authenticates requests with a session token.
type AuthMiddleware struct {
	tokens auth.SessionTokenService
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(tokens auth.SessionTokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
	}
}

// Authenticate validates the Bearer token from the Authorization header and
// adds the session ID to the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return m.authenticate(next, false)
}

// AuthenticateWithQuery behaves like Authenticate but also accepts the
// token in the "token" query parameter.
func (m *AuthMiddleware) AuthenticateWithQuery(next http.Handler) http.Handler {
	return m.authenticate(next, true)
}

func (m *AuthMiddleware) authenticate(next http.Handler, allowQuery bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok && allowQuery {
			token = r.URL.Query().Get(TokenQueryParam)
			ok = token != ""
		}
		if !ok {
			if r.Header.Get("Authorization") == "" {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			} else {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			}
			return
		}

		claims, err := m.tokens.Validate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrTokenNotYetValid),
				errors.Is(err, auth.ErrWrongTokenType),
				errors.Is(err, auth.ErrMissingToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
					"Authentication error", err)
			}
			return
		}

		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Debug("session authenticated", "session_id", claims.SessionID.String())

		ctx := shared.WithSessionID(r.Context(), claims.SessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
