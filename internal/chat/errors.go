package chat

import "errors"

// Reply decoding errors.
var (
	// ErrMalformedReply is returned by Decode when the model text is not a
	// JSON object with a string "response" field.
	ErrMalformedReply = errors.New("malformed model reply")
)

// Controller errors. The first group are no-op rejections: the session is
// left exactly as it was.
var (
	ErrBlankMessage    = errors.New("message is blank")
	ErrRequestPending  = errors.New("a model request is already pending")
	ErrQuizActive      = errors.New("quiz is active")
	ErrNotInitialized  = errors.New("conversation not initialized")
	ErrSessionClosed   = errors.New("conversation closed")
	ErrAlreadyStarted  = errors.New("conversation already initialized")
	ErrMissingGateway  = errors.New("gateway cannot be nil")
	ErrMissingQuestion = errors.New("quiz needs at least one question")
)

// Quiz errors.
var (
	// ErrQuizInactive is returned when an answer arrives outside a quiz.
	ErrQuizInactive = errors.New("no quiz in progress")

	// ErrInvalidOption is returned when the selected option index does not
	// exist for the current question.
	ErrInvalidOption = errors.New("invalid quiz option")

	// ErrAdvancePending is returned when an answer arrives while the engine
	// is still pausing before the next question.
	ErrAdvancePending = errors.New("quiz is advancing to the next question")

	// ErrNoAdvancePending is returned by Advance when nothing is scheduled,
	// e.g. after Stop.
	ErrNoAdvancePending = errors.New("no quiz advance scheduled")
)

// Registry errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrRegistryFull    = errors.New("session limit reached")
)
