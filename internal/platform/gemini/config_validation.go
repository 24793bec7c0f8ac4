package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/obsolescence-tutor/internal/config"
	"github.com/phrazzld/obsolescence-tutor/internal/gateway"
)

const (
	defaultMaxRetries        = 2
	defaultRetryDelaySeconds = 2
	defaultTimeoutSeconds    = 30
)

// validateConfig checks the settings the gateway cannot run without and
// normalizes the retry settings it can fall back on.
func validateConfig(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (config.LLMConfig, error) {
	if cfg.GeminiAPIKey == "" {
		logger.ErrorContext(ctx, "Missing Gemini API key")
		return cfg, fmt.Errorf("%w: gemini API key cannot be empty", gateway.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		logger.ErrorContext(ctx, "Missing Gemini model name")
		return cfg, fmt.Errorf("%w: model name cannot be empty", gateway.ErrInvalidConfig)
	}

	if cfg.MaxRetries < 0 {
		logger.WarnContext(ctx, "Invalid max retries value, using default",
			"value", cfg.MaxRetries,
			"default", defaultMaxRetries)
		cfg.MaxRetries = defaultMaxRetries
	}

	if cfg.RetryDelaySeconds < 1 {
		logger.WarnContext(ctx, "Invalid retry delay value, using default",
			"value", cfg.RetryDelaySeconds,
			"default", defaultRetryDelaySeconds)
		cfg.RetryDelaySeconds = defaultRetryDelaySeconds
	}

	if cfg.RequestTimeoutSeconds < 1 {
		logger.WarnContext(ctx, "Invalid request timeout value, using default",
			"value", cfg.RequestTimeoutSeconds,
			"default", defaultTimeoutSeconds)
		cfg.RequestTimeoutSeconds = defaultTimeoutSeconds
	}

	return cfg, nil
}
