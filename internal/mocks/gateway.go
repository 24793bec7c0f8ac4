package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/phrazzld/obsolescence-tutor/internal/gateway"
)

// MockGateway implements gateway.Gateway for testing
type MockGateway struct {
	// NewSessionFn allows test cases to mock the NewSession behavior
	NewSessionFn func(ctx context.Context) (gateway.Session, error)

	// Default response values
	Session gateway.Session
	Err     error

	// Call tracking for verification
	NewSessionCalls struct {
		// mu protects the call tracking state for concurrent test cases
		mu sync.Mutex

		// Count tracks how many times NewSession was called
		Count int
	}
}

// NewSession implements the gateway.Gateway interface
func (m *MockGateway) NewSession(ctx context.Context) (gateway.Session, error) {
	m.NewSessionCalls.mu.Lock()
	m.NewSessionCalls.Count++
	m.NewSessionCalls.mu.Unlock()

	if m.NewSessionFn != nil {
		return m.NewSessionFn(ctx)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Session, nil
}

// SessionCount returns how many times NewSession was called
func (m *MockGateway) SessionCount() int {
	m.NewSessionCalls.mu.Lock()
	defer m.NewSessionCalls.mu.Unlock()
	return m.NewSessionCalls.Count
}

// MockSession implements gateway.Session for testing
type MockSession struct {
	// SendFn allows test cases to mock the Send behavior
	SendFn func(ctx context.Context, message string) (string, error)

	// Replies are returned in order, one per call. Once exhausted, Reply and
	// Err are returned.
	Replies []string
	Reply   string
	Err     error

	// Call tracking for verification
	SendCalls struct {
		// mu protects the call tracking state and Replies
		mu sync.Mutex

		// Count tracks how many times Send was called
		Count int

		// Messages contains all messages passed to Send calls
		Messages []string
	}
}

// Send implements the gateway.Session interface
func (m *MockSession) Send(ctx context.Context, message string) (string, error) {
	m.SendCalls.mu.Lock()
	m.SendCalls.Count++
	m.SendCalls.Messages = append(m.SendCalls.Messages, message)

	var next string
	queued := len(m.Replies) > 0
	if queued {
		next = m.Replies[0]
		m.Replies = m.Replies[1:]
	}
	m.SendCalls.mu.Unlock()

	if m.SendFn != nil {
		return m.SendFn(ctx, message)
	}
	if queued {
		return next, nil
	}
	return m.Reply, m.Err
}

// Messages returns a copy of every message sent so far
func (m *MockSession) Messages() []string {
	m.SendCalls.mu.Lock()
	defer m.SendCalls.mu.Unlock()

	out := make([]string, len(m.SendCalls.Messages))
	copy(out, m.SendCalls.Messages)
	return out
}

// SendCount returns how many times Send was called
func (m *MockSession) SendCount() int {
	m.SendCalls.mu.Lock()
	defer m.SendCalls.mu.Unlock()
	return m.SendCalls.Count
}

// NewMockGatewayWithReplies creates a gateway whose single session answers
// with replies in order
func NewMockGatewayWithReplies(replies ...string) (*MockGateway, *MockSession) {
	session := &MockSession{Replies: replies}
	return &MockGateway{Session: session}, session
}

// ReplyJSON builds a reply document the way the model returns it. An empty
// action is omitted.
func ReplyJSON(response string, suggestions []string, action string) string {
	doc := map[string]interface{}{
		gateway.FieldResponse:    response,
		gateway.FieldSuggestions: suggestions,
	}
	if suggestions == nil {
		doc[gateway.FieldSuggestions] = []string{}
	}
	if action != "" {
		doc[gateway.FieldAction] = action
	}

	data, _ := json.Marshal(doc)
	return string(data)
}
