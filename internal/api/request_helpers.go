package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/obsolescence-tutor/internal/api/shared"
	"github.com/phrazzld/obsolescence-tutor/internal/chat"
	"github.com/phrazzld/obsolescence-tutor/internal/platform/logger"
	"github.com/phrazzld/obsolescence-tutor/internal/service/auth"
)

// sessionFromRequest resolves the controller for the session the auth
// middleware placed in the request context. It writes an error response
// and returns false when the session cannot be resolved.
//
// Parameters:
//   - w: The HTTP response writer
//   - r: The HTTP request
//   - sessions: The session store to look the controller up in
//
// Returns:
//   - (*chat.Controller, true): The session's controller
//   - (nil, false): The session was missing and an error was written
func sessionFromRequest(
	w http.ResponseWriter,
	r *http.Request,
	sessions SessionStore,
) (*chat.Controller, bool) {
	log := logger.FromContextOrDefault(r.Context(), slog.Default())

	id, ok := shared.SessionIDFromContext(r.Context())
	if !ok {
		log.Warn("session ID not found in request context")
		HandleAPIError(w, r, auth.ErrMissingToken, "")
		return nil, false
	}

	controller, err := sessions.Get(id)
	if err != nil {
		log.Debug("session lookup failed", "session_id", id.String(), "error", err)
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	return controller, true
}

// decodeAndValidate parses the JSON body into v and validates it. It writes
// a 400 response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	return true
}
