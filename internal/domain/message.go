package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a transcript entry.
type Role string

// Possible message roles
const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one immutable transcript entry.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a Message with a fresh ID.
// Returns an error if the role is unknown.
func NewMessage(role Role, text string) (Message, error) {
	if !isValidRole(role) {
		return Message{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	return Message{
		ID:        uuid.New(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// UserMessage is NewMessage for a user-authored entry.
func UserMessage(text string) Message {
	m, _ := NewMessage(RoleUser, text)
	return m
}

// ModelMessage is NewMessage for a model-authored entry.
func ModelMessage(text string) Message {
	m, _ := NewMessage(RoleModel, text)
	return m
}

func isValidRole(role Role) bool {
	switch role {
	case RoleUser, RoleModel:
		return true
	default:
		return false
	}
}
