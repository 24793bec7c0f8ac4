package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "TUTOR"

// keys lists every configuration key so that environment variables are
// picked up even when no default or config file entry exists.
var keys = []string{
	"server.port",
	"server.log_level",
	"llm.gemini_api_key",
	"llm.model_name",
	"llm.max_retries",
	"llm.retry_delay_seconds",
	"llm.request_timeout_seconds",
	"llm.base_url",
	"auth.session_secret",
	"auth.token_lifetime_minutes",
	"chat.question_delay_ms",
	"chat.session_ttl_minutes",
	"chat.max_sessions",
	"chat.quiz_bank_path",
	"chat.rate_limit_per_minute",
	"chat.rate_limit_burst",
	"cors.allowed_origins",
}

// Load configuration from environment variables and optionally a .env file
// and a config.yaml file. Environment variables take precedence over values
// from config files. Returns a populated Config struct or an error if
// loading/validation fails.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "reason", err.Error())
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("llm.model_name", "gemini-2.5-flash")
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.retry_delay_seconds", 2)
	v.SetDefault("llm.request_timeout_seconds", 30)
	v.SetDefault("auth.token_lifetime_minutes", 240)
	v.SetDefault("chat.question_delay_ms", 1500)
	v.SetDefault("chat.session_ttl_minutes", 60)
	v.SetDefault("chat.max_sessions", 1000)
	v.SetDefault("chat.rate_limit_per_minute", 20)
	v.SetDefault("chat.rate_limit_burst", 5)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
}
