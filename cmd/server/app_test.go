package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/obsolescence-tutor/internal/api"
	"github.com/phrazzld/obsolescence-tutor/internal/config"
	"github.com/phrazzld/obsolescence-tutor/internal/gateway"
	"github.com/phrazzld/obsolescence-tutor/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "debug"},
		LLM: config.LLMConfig{
			GeminiAPIKey:          "test-api-key",
			ModelName:             "gemini-2.5-flash",
			MaxRetries:            1,
			RetryDelaySeconds:     1,
			RequestTimeoutSeconds: 5,
			BaseURL:               "http://127.0.0.1:1",
		},
		Auth: config.AuthConfig{
			SessionSecret:        "test-secret-that-is-long-enough-for-testing",
			TokenLifetimeMinutes: 60,
		},
		Chat: config.ChatConfig{
			QuestionDelayMillis: 1500,
			SessionTTLMinutes:   60,
			MaxSessions:         10,
			RateLimitPerMinute:  60,
			RateLimitBurst:      10,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func greetingGateway() *mocks.MockGateway {
	return &mocks.MockGateway{
		NewSessionFn: func(ctx context.Context) (gateway.Session, error) {
			return &mocks.MockSession{Reply: mocks.ReplyJSON("Olá!", []string{"O que é?"}, "")}, nil
		},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *application {
	t.Helper()

	app, err := newApplicationWithGateway(cfg, discardLogger(), greetingGateway())
	require.NoError(t, err)
	t.Cleanup(app.cleanup)
	return app
}

func createSession(t *testing.T, handler http.Handler) string {
	t.Helper()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp api.CreateSessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Token
}

func postMessage(handler http.Handler, token, text string) *httptest.ResponseRecorder {
	body := fmt.Sprintf(`{"text":%q}`, text)
	req := httptest.NewRequest(http.MethodPost, "/api/session/messages", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestNewApplication(t *testing.T) {
	t.Parallel()

	t.Run("gemini gateway", func(t *testing.T) {
		t.Parallel()
		app, err := newApplication(context.Background(), testConfig(), discardLogger())
		require.NoError(t, err)
		t.Cleanup(app.cleanup)
		assert.NotNil(t, app.gateway)
		assert.NotNil(t, app.registry)
	})

	t.Run("missing api key", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.LLM.GeminiAPIKey = ""
		_, err := newApplication(context.Background(), cfg, discardLogger())
		assert.ErrorIs(t, err, gateway.ErrInvalidConfig)
	})

	t.Run("weak session secret", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.Auth.SessionSecret = "short"
		_, err := newApplicationWithGateway(cfg, discardLogger(), greetingGateway())
		assert.Error(t, err)
	})

	t.Run("missing quiz bank", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.Chat.QuizBankPath = t.TempDir() + "/missing.yaml"
		_, err := newApplicationWithGateway(cfg, discardLogger(), greetingGateway())
		assert.Error(t, err)
	})
}

func TestRouter(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, testConfig())
	router := app.setupRouter()

	t.Run("health", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "OK", rr.Body.String())
	})

	t.Run("session lifecycle", func(t *testing.T) {
		token := createSession(t, router)

		req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)

		rr = postMessage(router, token, "O que é obsolescência?")
		assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	})

	t.Run("unauthenticated", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/session", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/sessions", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("cors rejects unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/sessions", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRouterRateLimit(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Chat.RateLimitPerMinute = 1
	cfg.Chat.RateLimitBurst = 2
	router := newTestApp(t, cfg).setupRouter()

	token := createSession(t, router)

	assert.Equal(t, http.StatusOK, postMessage(router, token, "um").Code)
	assert.Equal(t, http.StatusOK, postMessage(router, token, "dois").Code)

	rr := postMessage(router, token, "três")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
}

func TestStartHTTPServer(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, testConfig())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.startHTTPServer(ctx, ln, app.setupRouter())
	}()

	url := "http://" + ln.Addr().String()
	require.Eventually(t, func() bool {
		resp, err := http.Get(url + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	resp, err := http.Post(url+"/api/sessions", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, app.registry.Len())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.Equal(t, 0, app.registry.Len(), "sessions are closed on shutdown")
}

func TestJanitorInterval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ttl  time.Duration
		want time.Duration
	}{
		{ttl: time.Second, want: minJanitorInterval},
		{ttl: 2 * time.Minute, want: 30 * time.Second},
		{ttl: time.Hour, want: maxJanitorInterval},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, janitorInterval(tt.ttl), tt.ttl.String())
	}
}
