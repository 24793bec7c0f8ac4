package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/obsolescence-tutor/internal/chat"
	"github.com/phrazzld/obsolescence-tutor/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSession(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t, 10, greeting)

	token, view := f.createSession(t)

	claims, err := f.tokens.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, claims.SessionID, view.SessionID)

	assert.Equal(t, chat.StateIdle, view.State)
	assert.Equal(t, []string{greetingTranscript}, transcriptTexts(view))
	assert.Equal(t, greetingSuggestions, view.Suggestions)
	assert.Equal(t, 1, f.registry.Len())
}

func TestCreateSessionDegraded(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t, 10)
	f.session.Err = errors.New("model unavailable")

	_, view := f.createSession(t)

	assert.Equal(t, chat.StateIdle, view.State)
	assert.NotEmpty(t, view.Error, "greeting failure is reported in the view, not as an HTTP error")
	assert.Len(t, view.Transcript, 1)
}

func TestCreateSessionRegistryFull(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t, 1, greeting)
	f.createSession(t)

	rr := f.do(t, http.MethodPost, "/api/sessions", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "Too many active sessions, try again later", decodeError(t, rr))
}

func TestCreateSessionTokenFailure(t *testing.T) {
	t.Parallel()

	gw, session := mocks.NewMockGatewayWithReplies(greeting)
	tokens := &mocks.MockSessionTokenService{Err: errors.New("signing failed")}
	f := newAPIFixtureWithTokens(t, 10, gw, session, tokens)

	rr := f.do(t, http.MethodPost, "/api/sessions", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to start session", decodeError(t, rr))
	assert.Equal(t, 0, f.registry.Len(), "session is dropped when no token can be issued")
}

func TestGetSession(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t, 10, greeting)
	token, created := f.createSession(t)

	t.Run("with token", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/api/session", token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		view := decodeView(t, rr)
		assert.Equal(t, created.SessionID, view.SessionID)
		assert.Equal(t, created.Revision, view.Revision)
	})

	t.Run("without token", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/api/session", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/api/session", "not-a-token", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid token for unknown session", func(t *testing.T) {
		orphan, err := f.tokens.Issue(context.Background(), uuid.New())
		require.NoError(t, err)

		rr := f.do(t, http.MethodGet, "/api/session", orphan, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Session not found", decodeError(t, rr))
	})
}

func TestPostMessage(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t, 10,
		greeting,
		mocks.ReplyJSON("É a prática de encurtar a vida útil.", []string{"Exemplos?"}, ""),
	)
	token, _ := f.createSession(t)

	rr := f.do(t, http.MethodPost, "/api/session/messages", token, MessageRequest{Text: "O que é?"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	view := decodeView(t, rr)
	assert.Equal(t, chat.StateIdle, view.State)
	assert.False(t, view.Loading)
	assert.Equal(t,
		[]string{greetingTranscript, "O que é?", "É a prática de encurtar a vida útil."},
		transcriptTexts(view))
	assert.Equal(t, []string{"Exemplos?"}, view.Suggestions)
	assert.Equal(t, "O que é?", f.session.Messages()[1])
}

func TestPostMessageRejections(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t, 10, greeting)
	token, created := f.createSession(t)

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "blank text",
			body:           MessageRequest{Text: "   "},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Message cannot be blank",
		},
		{
			name:           "missing text",
			body:           map[string]string{},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid text: required field",
		},
		{
			name:           "unknown field",
			body:           map[string]string{"text": "oi", "role": "model"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid request format",
		},
		{
			name:           "malformed json",
			body:           `{"text":`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid request format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := f.do(t, http.MethodPost, "/api/session/messages", token, tt.body)
			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectedError, decodeError(t, rr))
		})
	}

	rr := f.do(t, http.MethodGet, "/api/session", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, created.Revision, decodeView(t, rr).Revision, "rejected requests leave the session untouched")
	assert.Equal(t, 1, f.session.SendCount())
}

func TestQuizFlow(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t, 10,
		greeting,
		mocks.ReplyJSON("Vamos lá!", nil, "start_quiz"),
	)
	token, _ := f.createSession(t)

	rr := f.do(t, http.MethodPost, "/api/session/quiz/answers", token, map[string]int{"index": 0})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "No quiz in progress", decodeError(t, rr))

	rr = f.do(t, http.MethodPost, "/api/session/suggestions", token, MessageRequest{Text: "Quero fazer o quiz"})
	require.Equal(t, http.StatusOK, rr.Code)
	view := decodeView(t, rr)
	assert.Equal(t, chat.StateQuizActive, view.State)
	require.NotNil(t, view.Quiz)
	assert.Equal(t, 0, view.Quiz.QuestionIndex)
	assert.Len(t, view.Quiz.Options, 4)

	rr = f.do(t, http.MethodPost, "/api/session/messages", token, MessageRequest{Text: "posso perguntar?"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "Answer the quiz question first", decodeError(t, rr))

	rr = f.do(t, http.MethodPost, "/api/session/quiz/answers", token, map[string]int{"index": 9})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid quiz option", decodeError(t, rr))

	rr = f.do(t, http.MethodPost, "/api/session/quiz/answers", token, map[string]int{"index": -1})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/session/quiz/answers", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid index: required field", decodeError(t, rr))

	rr = f.do(t, http.MethodPost, "/api/session/quiz/answers", token, map[string]int{"index": 1})
	require.Equal(t, http.StatusOK, rr.Code)
	view = decodeView(t, rr)
	require.NotNil(t, view.Quiz)
	assert.Equal(t, 1, view.Quiz.Score)
	assert.True(t, view.Quiz.AdvancePending)

	rr = f.do(t, http.MethodPost, "/api/session/quiz/answers", token, map[string]int{"index": 1})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "Wait for the next question", decodeError(t, rr))

	f.scheduler.Advance(chat.DefaultQuestionDelay)

	rr = f.do(t, http.MethodGet, "/api/session", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	view = decodeView(t, rr)
	require.NotNil(t, view.Quiz)
	assert.Equal(t, 1, view.Quiz.QuestionIndex)
	assert.False(t, view.Quiz.AdvancePending)
}

func TestRemovedSessionIsNotFound(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t, 10, greeting)
	token, view := f.createSession(t)

	require.True(t, f.registry.Remove(view.SessionID))

	rr := f.do(t, http.MethodPost, "/api/session/messages", token, MessageRequest{Text: "ainda aí?"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
