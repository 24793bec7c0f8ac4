package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/obsolescence-tutor/internal/api/middleware"
	"github.com/phrazzld/obsolescence-tutor/internal/chat"
	"github.com/phrazzld/obsolescence-tutor/internal/config"
	"github.com/phrazzld/obsolescence-tutor/internal/domain"
	"github.com/phrazzld/obsolescence-tutor/internal/events"
	"github.com/phrazzld/obsolescence-tutor/internal/mocks"
	"github.com/phrazzld/obsolescence-tutor/internal/platform/logger"
	"github.com/phrazzld/obsolescence-tutor/internal/service/auth"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

var (
	greeting            = mocks.ReplyJSON("Olá! Eu sou seu tutor.", []string{"O que é obsolescência?", "Quero fazer o quiz"}, "")
	greetingTranscript  = "Olá! Eu sou seu tutor."
	greetingSuggestions = []string{"O que é obsolescência?", "Quero fazer o quiz"}
)

type apiFixture struct {
	registry  *chat.Registry
	scheduler *chat.ManualScheduler
	session   *mocks.MockSession
	hub       *FeedHub
	tokens    auth.SessionTokenService
	router    http.Handler
}

// newAPIFixture wires the handlers to a real registry whose sessions all
// share one mock model session answering with replies in order.
func newAPIFixture(t *testing.T, maxSessions int, replies ...string) *apiFixture {
	t.Helper()

	gw, session := mocks.NewMockGatewayWithReplies(replies...)
	tokens, err := auth.NewSessionTokenService(config.AuthConfig{
		SessionSecret:        testSecret,
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	return newAPIFixtureWithTokens(t, maxSessions, gw, session, tokens)
}

func newAPIFixtureWithTokens(
	t *testing.T,
	maxSessions int,
	gw *mocks.MockGateway,
	session *mocks.MockSession,
	tokens auth.SessionTokenService,
) *apiFixture {
	t.Helper()

	questions, err := domain.LoadQuizBank("")
	require.NoError(t, err)

	log, _ := logger.NewTestLogger()
	hub := NewFeedHub(log)
	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(hub)

	scheduler := chat.NewManualScheduler()
	registry := chat.NewRegistry(chat.Deps{
		Gateway:       gw,
		Questions:     questions,
		Scheduler:     scheduler,
		QuestionDelay: chat.DefaultQuestionDelay,
		Emitter:       emitter,
	}, chat.RegistrySettings{MaxSessions: maxSessions}, log)
	t.Cleanup(registry.Close)

	sessions := NewSessionHandler(registry, tokens, log)
	feed := NewFeedHandler(registry, hub, nil, log)
	authMW := middleware.NewAuthMiddleware(tokens)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(log))
	r.Post("/api/sessions", sessions.CreateSession)
	r.Group(func(r chi.Router) {
		r.Use(authMW.Authenticate)
		r.Get("/api/session", sessions.GetSession)
		r.Post("/api/session/messages", sessions.PostMessage)
		r.Post("/api/session/suggestions", sessions.PostSuggestion)
		r.Post("/api/session/quiz/answers", sessions.PostQuizAnswer)
	})
	r.With(authMW.AuthenticateWithQuery).Get("/api/session/feed", feed.ServeHTTP)

	return &apiFixture{
		registry:  registry,
		scheduler: scheduler,
		session:   session,
		hub:       hub,
		tokens:    tokens,
		router:    r,
	}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

// createSession starts a session and returns its token and first view.
func (f *apiFixture) createSession(t *testing.T) (string, chat.View) {
	t.Helper()

	rr := f.do(t, http.MethodPost, "/api/sessions", "", nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp CreateSessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.Session
}

func decodeView(t *testing.T, rr *httptest.ResponseRecorder) chat.View {
	t.Helper()

	var view chat.View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view), rr.Body.String())
	return view
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var resp struct {
		Error   string `json:"error"`
		TraceID string `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	require.NotEmpty(t, resp.TraceID)
	return resp.Error
}

func transcriptTexts(view chat.View) []string {
	out := make([]string, len(view.Transcript))
	for i, m := range view.Transcript {
		out[i] = m.Text
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
