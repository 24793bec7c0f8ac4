package chat

import (
	"fmt"
	"time"

	"github.com/phrazzld/obsolescence-tutor/internal/domain"
)

// DefaultQuestionDelay is the pause between answer feedback and the next
// question.
const DefaultQuestionDelay = 1500 * time.Millisecond

// QuizPhase is the engine's externally visible state.
type QuizPhase string

// Quiz phases
const (
	QuizInactive       QuizPhase = "inactive"
	QuizAwaitingAnswer QuizPhase = "awaiting_answer"
	QuizFinished       QuizPhase = "finished"
)

// Tier is the feedback bracket chosen from the final score.
type Tier string

// Feedback tiers
const (
	TierPerfect      Tier = "perfect"
	TierExcellent    Tier = "excellent"
	TierGood         Tier = "good"
	TierKeepLearning Tier = "keep_learning"
)

// TierFor picks the tier for score out of total: 100% is perfect, at least
// 75% excellent, at least 50% good, anything lower keep-learning.
func TierFor(score, total int) Tier {
	switch {
	case total > 0 && score >= total:
		return TierPerfect
	case total > 0 && score*4 >= total*3:
		return TierExcellent
	case total > 0 && score*2 >= total:
		return TierGood
	default:
		return TierKeepLearning
	}
}

// Message returns the pt-BR feedback text for the tier.
func (t Tier) Message() string {
	return tierMessages[t]
}

// QuizResult summarizes a finished quiz.
type QuizResult struct {
	Score int  `json:"score"`
	Total int  `json:"total"`
	Tier  Tier `json:"tier"`
}

// Advance is the outcome of a deferred quiz transition.
type Advance struct {
	// Message is the next question prompt or the final summary.
	Message domain.Message

	// Result is set when the quiz finished.
	Result *QuizResult
}

// QuizState is a read-only snapshot of a running quiz.
type QuizState struct {
	CurrentQuestionIndex int
	Score                int
	Total                int
	Question             domain.QuizQuestion
	AdvancePending       bool
}

// QuizEngine runs quizzes over a fixed question list. After each answer it
// schedules the next step through its Scheduler and calls onDue when the
// step is due; the owner then calls Advance. QuizEngine is not safe for
// concurrent use.
type QuizEngine struct {
	questions []domain.QuizQuestion
	scheduler Scheduler
	delay     time.Duration
	onDue     func()

	phase QuizPhase
	index int
	score int

	// timer is non-nil while an advance is scheduled
	timer Timer
}

// NewQuizEngine creates an inactive engine. A negative delay is treated as
// zero.
func NewQuizEngine(
	questions []domain.QuizQuestion,
	scheduler Scheduler,
	delay time.Duration,
	onDue func(),
) (*QuizEngine, error) {
	if len(questions) == 0 {
		return nil, ErrMissingQuestion
	}
	if scheduler == nil {
		scheduler = WallClock{}
	}
	if delay < 0 {
		delay = 0
	}
	if onDue == nil {
		onDue = func() {}
	}

	return &QuizEngine{
		questions: questions,
		scheduler: scheduler,
		delay:     delay,
		onDue:     onDue,
		phase:     QuizInactive,
	}, nil
}

// Phase returns the current phase.
func (q *QuizEngine) Phase() QuizPhase {
	return q.phase
}

// Active reports whether a quiz is in progress, including the pause before
// the next question.
func (q *QuizEngine) Active() bool {
	return q.phase == QuizAwaitingAnswer
}

// AdvancePending reports whether a deferred transition is scheduled.
func (q *QuizEngine) AdvancePending() bool {
	return q.timer != nil
}

// State returns a snapshot of the running quiz; ok is false when no quiz is
// in progress.
func (q *QuizEngine) State() (QuizState, bool) {
	if !q.Active() {
		return QuizState{}, false
	}

	return QuizState{
		CurrentQuestionIndex: q.index,
		Score:                q.score,
		Total:                len(q.questions),
		Question:             q.questions[q.index],
		AdvancePending:       q.timer != nil,
	}, true
}

// Start begins a new quiz at the first question and returns its prompt.
func (q *QuizEngine) Start() (domain.Message, error) {
	if q.Active() {
		return domain.Message{}, ErrQuizActive
	}

	q.phase = QuizAwaitingAnswer
	q.index = 0
	q.score = 0

	return domain.ModelMessage(fmt.Sprintf(quizStartFormat, q.questions[0].Question)), nil
}

// Answer grades selected against the current question. It returns the echo
// of the chosen option followed by the feedback, and schedules the next
// step.
func (q *QuizEngine) Answer(selected int) ([]domain.Message, error) {
	if !q.Active() {
		return nil, ErrQuizInactive
	}
	if q.timer != nil {
		return nil, ErrAdvancePending
	}

	question := q.questions[q.index]
	if selected < 0 || selected >= len(question.Options) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOption, selected)
	}

	var feedback string
	if selected == question.CorrectAnswerIndex {
		q.score++
		feedback = fmt.Sprintf(quizCorrectFormat, question.Explanation)
	} else {
		feedback = fmt.Sprintf(quizWrongFormat, question.CorrectOption(), question.Explanation)
	}

	q.timer = q.scheduler.AfterFunc(q.delay, q.onDue)

	return []domain.Message{
		domain.UserMessage(question.Options[selected]),
		domain.ModelMessage(feedback),
	}, nil
}

// Advance performs the scheduled transition: the next question, or the end
// of the quiz with its summary.
func (q *QuizEngine) Advance() (Advance, error) {
	if q.timer == nil {
		return Advance{}, ErrNoAdvancePending
	}
	q.timer = nil

	next := q.index + 1
	if next < len(q.questions) {
		q.index = next
		return Advance{
			Message: domain.ModelMessage(fmt.Sprintf(quizQuestionFormat, next+1, q.questions[next].Question)),
		}, nil
	}

	return q.finish(), nil
}

func (q *QuizEngine) finish() Advance {
	q.phase = QuizFinished

	total := len(q.questions)
	result := QuizResult{Score: q.score, Total: total, Tier: TierFor(q.score, total)}

	return Advance{
		Message: domain.ModelMessage(fmt.Sprintf(quizSummaryFormat, result.Score, result.Total, result.Tier.Message())),
		Result:  &result,
	}
}

// Stop cancels a scheduled transition.
func (q *QuizEngine) Stop() {
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}
