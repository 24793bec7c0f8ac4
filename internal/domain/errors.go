package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidRole is returned when a message role is not user or model.
	ErrInvalidRole = errors.New("invalid message role")

	// ErrEmptyQuizBank is returned when a question bank holds no questions.
	ErrEmptyQuizBank = errors.New("quiz bank has no questions")

	// ErrInvalidAnswerIndex is returned when a correct answer index does not
	// point at one of the question's options.
	ErrInvalidAnswerIndex = errors.New("correct answer index out of range")
)
