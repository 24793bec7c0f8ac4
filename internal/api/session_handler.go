package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/obsolescence-tutor/internal/api/shared"
	"github.com/phrazzld/obsolescence-tutor/internal/chat"
	"github.com/phrazzld/obsolescence-tutor/internal/platform/logger"
	"github.com/phrazzld/obsolescence-tutor/internal/service/auth"
)

// SessionStore is the part of the session registry the handlers use.
type SessionStore interface {
	Create(ctx context.Context) (uuid.UUID, *chat.Controller, error)
	Get(id uuid.UUID) (*chat.Controller, error)
	Remove(id uuid.UUID) bool
}

var _ SessionStore = (*chat.Registry)(nil)

// SessionHandler handles conversation HTTP requests.
type SessionHandler struct {
	sessions SessionStore
	tokens   auth.SessionTokenService
	logger   *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
//
// Parameters:
//   - sessions: the session registry
//   - tokens: issues the token returned by CreateSession
//   - logger: the base logger; must not be nil
//
// Returns:
//   - *SessionHandler: the handler
func NewSessionHandler(
	sessions SessionStore,
	tokens auth.SessionTokenService,
	logger *slog.Logger,
) *SessionHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SessionHandler")
	}

	return &SessionHandler{
		sessions: sessions,
		tokens:   tokens,
		logger:   logger.With(slog.String("component", "session_handler")),
	}
}

// CreateSession handles POST /api/sessions requests.
// It starts a conversation, runs the bootstrap greeting and returns the
// session token together with the first view.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, controller, err := h.sessions.Create(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start session")
		return
	}

	token, err := h.tokens.Issue(r.Context(), id)
	if err != nil {
		h.sessions.Remove(id)
		HandleAPIError(w, r, err, "Failed to start session")
		return
	}

	view := controller.View()
	log.Info("session started",
		slog.String("session_id", id.String()),
		slog.String("state", string(view.State)))

	shared.RespondWithJSON(w, r, http.StatusCreated, CreateSessionResponse{
		Token:   token,
		Session: view,
	})
}

// GetSession handles GET /api/session requests.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	controller, ok := sessionFromRequest(w, r, h.sessions)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, controller.View())
}

// PostMessage handles POST /api/session/messages requests.
// It blocks until the model replies and returns the updated view.
func (h *SessionHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, (*chat.Controller).Submit)
}

// PostSuggestion handles POST /api/session/suggestions requests.
func (h *SessionHandler) PostSuggestion(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, (*chat.Controller).SelectSuggestion)
}

func (h *SessionHandler) submit(
	w http.ResponseWriter,
	r *http.Request,
	send func(*chat.Controller, context.Context, string) error,
) {
	controller, ok := sessionFromRequest(w, r, h.sessions)
	if !ok {
		return
	}

	var req MessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := send(controller, r.Context(), req.Text); err != nil {
		HandleAPIError(w, r, err, "Failed to send message")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, controller.View())
}

// PostQuizAnswer handles POST /api/session/quiz/answers requests.
func (h *SessionHandler) PostQuizAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	controller, ok := sessionFromRequest(w, r, h.sessions)
	if !ok {
		return
	}

	var req QuizAnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := controller.AnswerQuizQuestion(r.Context(), *req.Index); err != nil {
		HandleAPIError(w, r, err, "Failed to record answer")
		return
	}

	log.Debug("quiz answer recorded",
		slog.String("session_id", controller.ID().String()),
		slog.Int("index", *req.Index))
	shared.RespondWithJSON(w, r, http.StatusOK, controller.View())
}
