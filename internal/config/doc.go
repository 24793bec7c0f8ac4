// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, .env files, config files).
// It provides type-safe access to the settings needed by the tutor's
// components while keeping configuration details separate from the
// conversation logic.
package config
