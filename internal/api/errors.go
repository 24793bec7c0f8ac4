package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/obsolescence-tutor/internal/api/shared"
	"github.com/phrazzld/obsolescence-tutor/internal/chat"
	"github.com/phrazzld/obsolescence-tutor/internal/service/auth"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, chat.ErrSessionNotFound):
		return http.StatusNotFound

	case errors.Is(err, chat.ErrSessionClosed):
		return http.StatusGone

	// Conflict errors: the request is valid but the session is not in a
	// state that accepts it
	case errors.Is(err, chat.ErrRequestPending),
		errors.Is(err, chat.ErrQuizActive),
		errors.Is(err, chat.ErrQuizInactive),
		errors.Is(err, chat.ErrAdvancePending),
		errors.Is(err, chat.ErrNotInitialized),
		errors.Is(err, chat.ErrAlreadyStarted):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, chat.ErrBlankMessage),
		errors.Is(err, chat.ErrInvalidOption),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest

	case errors.Is(err, chat.ErrRegistryFull):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, chat.ErrSessionNotFound):
		return "Session not found"

	case errors.Is(err, chat.ErrSessionClosed):
		return "Session has ended"

	case errors.Is(err, chat.ErrRequestPending):
		return "A reply is still being generated"

	case errors.Is(err, chat.ErrQuizActive):
		return "Answer the quiz question first"

	case errors.Is(err, chat.ErrQuizInactive):
		return "No quiz in progress"

	case errors.Is(err, chat.ErrAdvancePending):
		return "Wait for the next question"

	case errors.Is(err, chat.ErrNotInitialized),
		errors.Is(err, chat.ErrAlreadyStarted):
		return "Session is not ready"

	case errors.Is(err, chat.ErrBlankMessage):
		return "Message cannot be blank"

	case errors.Is(err, chat.ErrInvalidOption):
		return "Invalid quiz option"

	case errors.As(err, &validationErrs):
		return SanitizeValidationError(err)

	case errors.Is(err, chat.ErrRegistryFull):
		return "Too many active sessions, try again later"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the mapped status and safe message for err, logging
// the redacted details. defaultMsg replaces the generic message for 5xx
// responses when set.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		message = defaultMsg
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	default:
		return "validation failed"
	}
}
