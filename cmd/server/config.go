package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/obsolescence-tutor/internal/config"
	"github.com/phrazzld/obsolescence-tutor/internal/platform/logger"
)

// loadAppConfig loads the application configuration from environment variables or config file.
// Returns the loaded config and any loading error.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// setupAppLogger configures the application logger from config and logs the
// non-secret settings.
func setupAppLogger(cfg *config.Config) (*slog.Logger, error) {
	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"model", cfg.LLM.ModelName,
		"max_sessions", cfg.Chat.MaxSessions,
		"session_ttl_minutes", cfg.Chat.SessionTTLMinutes)
	l.Debug("Auth configuration", "session_secret_present", cfg.Auth.SessionSecret != "")

	return l, nil
}
