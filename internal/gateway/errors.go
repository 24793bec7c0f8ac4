package gateway

import "errors"

// Common errors returned by gateway adapters
var (
	// ErrEmptyMessage is returned when an empty message is sent
	ErrEmptyMessage = errors.New("message cannot be empty")

	// ErrInvalidResponse is returned when the model returns no usable text
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error calling language model")

	// ErrInvalidConfig is returned when the gateway configuration is invalid
	ErrInvalidConfig = errors.New("invalid gateway configuration")
)
