package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/obsolescence-tutor/internal/domain"
	"github.com/phrazzld/obsolescence-tutor/internal/events"
	"github.com/phrazzld/obsolescence-tutor/internal/gateway"
	"github.com/phrazzld/obsolescence-tutor/internal/redact"
)

// DefaultRequestTimeout bounds model requests the controller starts on its
// own, i.e. the post-quiz suggestion fetch.
const DefaultRequestTimeout = 2 * time.Minute

// Deps holds a Controller's collaborators and settings.
type Deps struct {
	Gateway   gateway.Gateway
	Questions []domain.QuizQuestion

	// Scheduler runs the deferred quiz transitions. Defaults to WallClock.
	Scheduler     Scheduler
	QuestionDelay time.Duration

	// RequestTimeout defaults to DefaultRequestTimeout.
	RequestTimeout time.Duration

	// Emitter is optional.
	Emitter events.EventEmitter
	Logger  *slog.Logger
}

// EventPayload is the payload of every event a Controller emits.
type EventPayload struct {
	View   View        `json:"view"`
	Result *QuizResult `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Controller owns one conversation. All methods are safe for concurrent use;
// model calls run outside the lock, and the loading flag keeps at most one
// of them in flight.
type Controller struct {
	id             uuid.UUID
	gateway        gateway.Gateway
	emitter        events.EventEmitter
	logger         *slog.Logger
	requestTimeout time.Duration

	// baseCtx scopes work the controller starts itself; cancelled by Close
	baseCtx context.Context
	cancel  context.CancelFunc

	mu          sync.Mutex
	session     gateway.Session
	quiz        *QuizEngine
	transcript  []domain.Message
	suggestions []string
	loading     bool
	lastError   string
	initialized bool
	closed      bool
	revision    uint64
}

type notice struct {
	eventType string
	result    *QuizResult
	err       string
}

// NewController creates a controller for session id. Call Initialize before
// anything else.
func NewController(id uuid.UUID, deps Deps) (*Controller, error) {
	if deps.Gateway == nil {
		return nil, ErrMissingGateway
	}

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	c := &Controller{
		id:             id,
		gateway:        deps.Gateway,
		emitter:        deps.Emitter,
		logger:         log.With("component", "chat_controller", "session_id", id.String()),
		requestTimeout: timeout,
		suggestions:    []string{},
	}
	c.baseCtx, c.cancel = context.WithCancel(context.Background())

	quiz, err := NewQuizEngine(deps.Questions, deps.Scheduler, deps.QuestionDelay, c.onQuizDue)
	if err != nil {
		c.cancel()
		return nil, err
	}
	c.quiz = quiz

	return c, nil
}

// ID returns the session ID.
func (c *Controller) ID() uuid.UUID {
	return c.id
}

// State returns the current controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// View returns a snapshot of the conversation.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Initialize opens the model session and fetches the greeting. Model
// failures do not fail Initialize: they leave an idle session carrying an
// apology and an error message.
func (c *Controller) Initialize(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrSessionClosed
	case c.initialized:
		c.mu.Unlock()
		return ErrAlreadyStarted
	case c.loading:
		c.mu.Unlock()
		return ErrRequestPending
	}
	c.loading = true
	c.mu.Unlock()

	sess, err := c.gateway.NewSession(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to create model session", "error", redact.Error(err))

		c.mu.Lock()
		c.loading = false
		c.initialized = true
		c.lastError = errSessionFailed
		view := c.commitLocked()
		c.mu.Unlock()

		c.publish(ctx, view, notice{eventType: events.TypeGatewayFailed, err: errSessionFailed})
		return nil
	}

	raw, err := sess.Send(ctx, greetingRequest)

	c.mu.Lock()
	c.session = sess
	c.loading = false
	c.initialized = true

	var n notice
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to fetch greeting", "error", redact.Error(err))
		c.transcript = append(c.transcript, domain.ModelMessage(initApology))
		c.suggestions = []string{}
		c.lastError = errInitFailed
		n = notice{eventType: events.TypeGatewayFailed, err: errInitFailed}
	} else {
		reply := c.parse(ctx, raw)
		c.transcript = append(c.transcript, domain.ModelMessage(reply.MainText))
		c.suggestions = reply.Suggestions
		n = notice{eventType: events.TypeTranscriptUpdated}
	}
	view := c.commitLocked()
	c.mu.Unlock()

	c.publish(ctx, view, n)
	return nil
}

// Submit sends free text to the model. It is a no-op returning
// ErrBlankMessage, ErrRequestPending or ErrQuizActive when the text is
// blank, a request is in flight, or a quiz is running. Model failures are
// recorded in the session, not returned.
func (c *Controller) Submit(ctx context.Context, text string) error {
	c.mu.Lock()
	if err := c.admitLocked(text); err != nil {
		c.mu.Unlock()
		return err
	}

	c.transcript = append(c.transcript, domain.UserMessage(text))
	c.suggestions = []string{}
	c.lastError = ""
	c.loading = true
	sess := c.session
	view := c.commitLocked()
	c.mu.Unlock()

	c.publish(ctx, view, notice{eventType: events.TypeTranscriptUpdated})

	sess, raw, err := c.send(ctx, sess, text)

	c.mu.Lock()
	c.loading = false
	if c.session == nil {
		c.session = sess
	}

	var n notice
	switch {
	case err != nil:
		c.logger.ErrorContext(ctx, "model request failed", "error", redact.Error(err))
		c.transcript = append(c.transcript, domain.ModelMessage(submitApology))
		c.suggestions = []string{}
		c.lastError = errSubmitFailed
		n = notice{eventType: events.TypeGatewayFailed, err: errSubmitFailed}
	default:
		n = c.applyReplyLocked(ctx, c.parse(ctx, raw))
	}
	view = c.commitLocked()
	c.mu.Unlock()

	c.publish(ctx, view, n)
	return nil
}

// SelectSuggestion submits a suggestion's text. It behaves exactly like Submit.
func (c *Controller) SelectSuggestion(ctx context.Context, text string) error {
	return c.Submit(ctx, text)
}

// AnswerQuizQuestion answers the current quiz question with the zero-based
// option index.
func (c *Controller) AnswerQuizQuestion(ctx context.Context, index int) error {
	c.mu.Lock()
	if err := c.readyLocked(); err != nil {
		c.mu.Unlock()
		return err
	}

	msgs, err := c.quiz.Answer(index)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.transcript = append(c.transcript, msgs...)
	view := c.commitLocked()
	c.mu.Unlock()

	c.publish(ctx, view, notice{eventType: events.TypeTranscriptUpdated})
	return nil
}

// Close stops any scheduled quiz transition and cancels work the controller
// started itself. It is safe to call more than once.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.quiz.Stop()
	c.mu.Unlock()

	c.cancel()
}

// applyReplyLocked installs a parsed reply to a user message.
func (c *Controller) applyReplyLocked(ctx context.Context, reply Reply) notice {
	if !reply.StartsQuiz() {
		c.transcript = append(c.transcript, domain.ModelMessage(reply.MainText))
		c.suggestions = reply.Suggestions
		return notice{eventType: events.TypeTranscriptUpdated}
	}

	if reply.MainText != "" {
		c.transcript = append(c.transcript, domain.ModelMessage(reply.MainText))
	}

	prompt, err := c.quiz.Start()
	if err != nil {
		c.logger.WarnContext(ctx, "ignoring quiz start", "error", err)
		return notice{eventType: events.TypeTranscriptUpdated}
	}
	c.transcript = append(c.transcript, prompt)
	c.suggestions = []string{}

	c.logger.InfoContext(ctx, "quiz started")
	return notice{eventType: events.TypeQuizStarted}
}

// onQuizDue runs on the scheduler when a deferred quiz transition is due.
func (c *Controller) onQuizDue() {
	ctx := c.baseCtx

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	adv, err := c.quiz.Advance()
	if err != nil {
		c.mu.Unlock()
		c.logger.DebugContext(ctx, "stale quiz transition", "error", err)
		return
	}
	c.transcript = append(c.transcript, adv.Message)

	if adv.Result == nil {
		view := c.commitLocked()
		c.mu.Unlock()
		c.publish(ctx, view, notice{eventType: events.TypeQuizAdvanced})
		return
	}

	c.suggestions = []string{}
	c.loading = true
	sess := c.session
	view := c.commitLocked()
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "quiz finished",
		"score", adv.Result.Score,
		"total", adv.Result.Total,
		"tier", adv.Result.Tier)
	c.publish(ctx, view, notice{eventType: events.TypeQuizFinished, result: adv.Result})

	c.fetchSuggestions(sess)
}

// fetchSuggestions asks the model for fresh topics after a quiz.
func (c *Controller) fetchSuggestions(sess gateway.Session) {
	ctx, cancel := context.WithTimeout(c.baseCtx, c.requestTimeout)
	defer cancel()

	sess, raw, err := c.send(ctx, sess, postQuizRequest)

	c.mu.Lock()
	c.loading = false
	if c.session == nil {
		c.session = sess
	}

	var n notice
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to fetch post-quiz suggestions", "error", redact.Error(err))
		c.suggestions = []string{}
		c.lastError = errSuggestionsFailed
		n = notice{eventType: events.TypeGatewayFailed, err: errSuggestionsFailed}
	} else {
		c.suggestions = c.parse(ctx, raw).Suggestions
		n = notice{eventType: events.TypeTranscriptUpdated}
	}
	view := c.commitLocked()
	c.mu.Unlock()

	c.publish(c.baseCtx, view, n)
}

// send delivers message, opening a model session first if the earlier
// attempt failed.
func (c *Controller) send(
	ctx context.Context,
	sess gateway.Session,
	message string,
) (gateway.Session, string, error) {
	if sess == nil {
		created, err := c.gateway.NewSession(ctx)
		if err != nil {
			return nil, "", err
		}
		sess = created
	}

	raw, err := sess.Send(ctx, message)
	return sess, raw, err
}

func (c *Controller) parse(ctx context.Context, raw string) Reply {
	reply, err := Decode(raw)
	if err != nil {
		c.logger.WarnContext(ctx, "model reply did not match the reply shape",
			"error", err,
			"raw_length", len(raw))
		return Parse(raw)
	}
	return reply
}

func (c *Controller) readyLocked() error {
	switch {
	case c.closed:
		return ErrSessionClosed
	case !c.initialized:
		return ErrNotInitialized
	default:
		return nil
	}
}

func (c *Controller) admitLocked(text string) error {
	if err := c.readyLocked(); err != nil {
		return err
	}

	switch {
	case strings.TrimSpace(text) == "":
		return ErrBlankMessage
	case c.loading:
		return ErrRequestPending
	case c.quiz.Active():
		return ErrQuizActive
	default:
		return nil
	}
}

// commitLocked bumps the revision and returns the new view.
func (c *Controller) commitLocked() View {
	c.revision++
	return c.viewLocked()
}

// publish emits n with the given view. Must be called without c.mu held.
func (c *Controller) publish(ctx context.Context, view View, n notice) {
	if c.emitter == nil {
		return
	}

	event, err := events.NewConversationEvent(c.id, n.eventType, EventPayload{
		View:   view,
		Result: n.result,
		Error:  n.err,
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to build conversation event", "error", err)
		return
	}

	if err := c.emitter.EmitEvent(context.WithoutCancel(ctx), event); err != nil {
		c.logger.WarnContext(ctx, "conversation event handler failed",
			"event_type", n.eventType,
			"error", err)
	}
}
