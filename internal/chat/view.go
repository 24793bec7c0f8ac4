package chat

import (
	"github.com/google/uuid"
	"github.com/phrazzld/obsolescence-tutor/internal/domain"
)

// State is the controller's externally visible state.
type State string

// Controller states
const (
	StateInitializing            State = "initializing"
	StateIdle                    State = "idle"
	StateAwaitingGatewayResponse State = "awaiting_gateway_response"
	StateQuizActive              State = "quiz_active"
)

// View is an immutable snapshot of a conversation for the presentation
// layer. Revision increases with every change, so clients can drop stale
// snapshots that arrive out of order.
type View struct {
	SessionID   uuid.UUID        `json:"session_id"`
	Revision    uint64           `json:"revision"`
	State       State            `json:"state"`
	Transcript  []domain.Message `json:"transcript"`
	Suggestions []string         `json:"suggestions"`
	Loading     bool             `json:"loading"`
	Error       string           `json:"error,omitempty"`
	Quiz        *QuizView        `json:"quiz,omitempty"`
}

// QuizView describes the question on screen while a quiz is active.
type QuizView struct {
	QuestionIndex  int      `json:"question_index"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	Score          int      `json:"score"`
	Total          int      `json:"total"`
	AdvancePending bool     `json:"advance_pending"`
}

// viewLocked builds a View. Callers must hold c.mu.
func (c *Controller) viewLocked() View {
	transcript := make([]domain.Message, len(c.transcript))
	copy(transcript, c.transcript)

	suggestions := make([]string, len(c.suggestions))
	copy(suggestions, c.suggestions)

	v := View{
		SessionID:   c.id,
		Revision:    c.revision,
		State:       c.stateLocked(),
		Transcript:  transcript,
		Suggestions: suggestions,
		Loading:     c.loading,
		Error:       c.lastError,
	}

	if qs, ok := c.quiz.State(); ok {
		options := make([]string, len(qs.Question.Options))
		copy(options, qs.Question.Options)
		v.Quiz = &QuizView{
			QuestionIndex:  qs.CurrentQuestionIndex,
			Question:       qs.Question.Question,
			Options:        options,
			Score:          qs.Score,
			Total:          qs.Total,
			AdvancePending: qs.AdvancePending,
		}
	}

	return v
}

func (c *Controller) stateLocked() State {
	switch {
	case !c.initialized:
		return StateInitializing
	case c.loading:
		return StateAwaitingGatewayResponse
	case c.quiz.Active():
		return StateQuizActive
	default:
		return StateIdle
	}
}
