package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/obsolescence-tutor/internal/config"
	"github.com/phrazzld/obsolescence-tutor/internal/gateway"
	"google.golang.org/genai"
)

// Gateway implements gateway.Gateway using Google's Gemini API.
type Gateway struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains the normalized LLM settings
	config config.LLMConfig

	// client is the Gemini API client shared by all sessions
	client *genai.Client

	// generateConfig pins the instruction and reply schema
	generateConfig *genai.GenerateContentConfig

	// wait blocks between retry attempts; replaced in tests
	wait func(ctx context.Context, d time.Duration) error

	rngMu sync.Mutex
	rng   *rand.Rand
}

var _ gateway.Gateway = (*Gateway)(nil)

// Option customizes a Gateway at construction time.
type Option func(*genai.ClientConfig)

// WithHTTPClient sets the HTTP client used by the SDK.
func WithHTTPClient(client *http.Client) Option {
	return func(cc *genai.ClientConfig) {
		cc.HTTPClient = client
	}
}

// NewGateway creates a Gateway with the provided dependencies.
//
// Parameters:
//   - ctx: Context for client initialization
//   - logger: A structured logger for operation logging
//   - cfg: LLM configuration containing API key, model name and retry settings
//   - opts: Optional client overrides
//
// Returns:
//   - A ready Gateway or an error wrapping gateway.ErrInvalidConfig
func NewGateway(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig, opts ...Option) (*Gateway, error) {
	if logger == nil {
		return nil, ErrNilLogger
	}

	logger.InfoContext(ctx, "Initializing Gemini gateway", "model", cfg.ModelName)

	cfg, err := validateConfig(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	for _, opt := range opts {
		opt(clientConfig)
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", gateway.ErrInvalidConfig, err)
	}

	return &Gateway{
		logger:         logger,
		config:         cfg,
		client:         client,
		generateConfig: sessionConfig(),
		wait:           sleepContext,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// NewSession opens a chat pinned to the tutor instruction and reply schema.
func (g *Gateway) NewSession(ctx context.Context) (gateway.Session, error) {
	chat, err := g.client.Chats.Create(ctx, g.config.ModelName, g.generateConfig, nil)
	if err != nil {
		g.logger.ErrorContext(ctx, "Failed to create Gemini chat", "error", err)
		return nil, fmt.Errorf("%w: failed to create chat: %v", gateway.ErrInvalidConfig, err)
	}

	s := &session{
		id:      uuid.New(),
		gateway: g,
		chat:    chat,
	}
	g.logger.DebugContext(ctx, "Gemini chat created", "chat_id", s.id.String())
	return s, nil
}

// session is one multi-turn chat. The underlying genai.Chat is not safe for
// concurrent sends, so callers must serialize Send.
type session struct {
	id      uuid.UUID
	gateway *Gateway
	chat    *genai.Chat
}

// Send delivers message and returns the model's raw text.
func (s *session) Send(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", gateway.ErrEmptyMessage
	}

	log := s.gateway.logger.With("chat_id", s.id.String())
	return s.gateway.callWithRetry(ctx, log, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		return s.chat.SendMessage(ctx, genai.Part{Text: message})
	})
}

// callWithRetry runs call with exponential backoff retry logic.
//
// Transient failures (network errors, timeouts, 429 and 5xx responses) are
// retried up to config.MaxRetries times with jittered backoff. Blocked or
// unusable replies and other client errors are returned immediately.
func (g *Gateway) callWithRetry(
	ctx context.Context,
	log *slog.Logger,
	call func(ctx context.Context) (*genai.GenerateContentResponse, error),
) (string, error) {
	maxRetries := g.config.MaxRetries
	timeout := g.config.RequestTimeout()

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		log.DebugContext(ctx, "Making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		resp, err := call(attemptCtx)
		cancel()

		var text string
		if err == nil {
			text, err = extractText(resp)
		} else {
			err = classifyError(err)
		}

		if err == nil {
			log.DebugContext(ctx, "Gemini API call successful",
				"attempt", attemptNum,
				"response_length", len(text))
			return text, nil
		}

		log.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if !errors.Is(err, gateway.ErrTransientFailure) {
			log.WarnContext(ctx, "Permanent error occurred, not retrying")
			return "", err
		}

		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", gateway.ErrTransientFailure, ctx.Err())
		}

		if attempt >= maxRetries {
			log.WarnContext(ctx, "Maximum retry attempts reached", "max_retries", maxRetries)
			return "", fmt.Errorf("exceeded maximum retry attempts (%d): %w", maxRetries, err)
		}

		delay := g.backoff(attempt)
		log.InfoContext(ctx, "Retrying after delay",
			"attempt", attemptNum,
			"delay_ms", delay.Milliseconds())

		if err := g.wait(ctx, delay); err != nil {
			log.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", err)
			return "", fmt.Errorf("%w: %v", gateway.ErrTransientFailure, err)
		}
	}
}

// backoff computes baseDelay * 2^attempt * (0.5 + rand(0, 0.5)).
func (g *Gateway) backoff(attempt int) time.Duration {
	g.rngMu.Lock()
	jitterFactor := 0.5 + g.rng.Float64()*0.5
	g.rngMu.Unlock()

	seconds := float64(g.config.RetryDelaySeconds) * math.Pow(2, float64(attempt)) * jitterFactor
	return time.Duration(seconds * float64(time.Second))
}

// extractText validates a successful response and returns its text.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", gateway.ErrInvalidResponse)
	}

	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" &&
		fb.BlockReason != genai.BlockedReasonUnspecified {
		return "", fmt.Errorf("%w: prompt blocked (%s)", gateway.ErrContentBlocked, fb.BlockReason)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", gateway.ErrInvalidResponse)
	}

	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: reply blocked by safety filters", gateway.ErrContentBlocked)
	}

	if resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: empty content in response", gateway.ErrInvalidResponse)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: response has no text", gateway.ErrInvalidResponse)
	}

	return text, nil
}

// classifyError maps SDK and transport failures onto gateway errors.
func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusUnauthorized, apiErr.Code == http.StatusForbidden:
			return fmt.Errorf("%w: %v", gateway.ErrInvalidConfig, err)
		case apiErr.Code == http.StatusTooManyRequests,
			apiErr.Code == http.StatusRequestTimeout,
			apiErr.Code >= http.StatusInternalServerError:
			return fmt.Errorf("%w: %v", gateway.ErrTransientFailure, err)
		case apiErr.Code >= http.StatusBadRequest:
			return fmt.Errorf("%w: %v", gateway.ErrInvalidResponse, err)
		}
	}

	return fmt.Errorf("%w: %v", gateway.ErrTransientFailure, err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
