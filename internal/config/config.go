package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	LLM    LLMConfig    `mapstructure:"llm"    validate:"required"`
	Auth   AuthConfig   `mapstructure:"auth"   validate:"required"`
	Chat   ChatConfig   `mapstructure:"chat"   validate:"required"`
	CORS   CORSConfig   `mapstructure:"cors"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// LLMConfig contains the Gemini gateway settings.
type LLMConfig struct {
	GeminiAPIKey          string `mapstructure:"gemini_api_key"          validate:"required"`
	ModelName             string `mapstructure:"model_name"              validate:"required"`
	MaxRetries            int    `mapstructure:"max_retries"             validate:"gte=0,lte=10"`
	RetryDelaySeconds     int    `mapstructure:"retry_delay_seconds"     validate:"gte=1,lte=60"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" validate:"gte=1,lte=300"`

	// BaseURL overrides the Gemini endpoint. Empty means the public API.
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
}

// RequestTimeout returns the per-attempt timeout applied to Gemini calls.
func (c LLMConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// AuthConfig contains the session token settings.
type AuthConfig struct {
	SessionSecret        string `mapstructure:"session_secret"         validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lte=10080"`
}

// ChatConfig contains conversation and quiz pacing settings.
type ChatConfig struct {
	QuestionDelayMillis int `mapstructure:"question_delay_ms"   validate:"gte=0,lte=60000"`
	SessionTTLMinutes   int `mapstructure:"session_ttl_minutes" validate:"required,gt=0"`
	MaxSessions         int `mapstructure:"max_sessions"        validate:"required,gt=0"`

	// QuizBankPath points at a YAML question bank. Empty uses the embedded bank.
	QuizBankPath       string `mapstructure:"quiz_bank_path"`
	RateLimitPerMinute int    `mapstructure:"rate_limit_per_minute" validate:"required,gt=0"`
	RateLimitBurst     int    `mapstructure:"rate_limit_burst"      validate:"required,gt=0"`
}

// QuestionDelay returns the pause between quiz feedback and the next prompt.
func (c ChatConfig) QuestionDelay() time.Duration {
	return time.Duration(c.QuestionDelayMillis) * time.Millisecond
}

// SessionTTL returns how long an idle session is kept.
func (c ChatConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}
