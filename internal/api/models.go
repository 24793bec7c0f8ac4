package api

import (
	"github.com/phrazzld/obsolescence-tutor/internal/chat"
)

// CreateSessionResponse is returned when a new conversation starts.
type CreateSessionResponse struct {
	// Token authenticates later requests for this session (Bearer header,
	// or the token query parameter on the feed).
	Token string `json:"token"`

	// Session is the conversation after the bootstrap greeting.
	Session chat.View `json:"session"`
}

// MessageRequest defines the payload for sending a message or picking a suggestion.
type MessageRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

// QuizAnswerRequest defines the payload for answering the current quiz question.
type QuizAnswerRequest struct {
	// Index is the zero-based option index. A pointer so that 0 passes "required".
	Index *int `json:"index" validate:"required,gte=0"`
}
