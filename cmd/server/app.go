package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/phrazzld/obsolescence-tutor/internal/api"
	"github.com/phrazzld/obsolescence-tutor/internal/chat"
	"github.com/phrazzld/obsolescence-tutor/internal/config"
	"github.com/phrazzld/obsolescence-tutor/internal/domain"
	"github.com/phrazzld/obsolescence-tutor/internal/events"
	"github.com/phrazzld/obsolescence-tutor/internal/gateway"
	"github.com/phrazzld/obsolescence-tutor/internal/platform/gemini"
	"github.com/phrazzld/obsolescence-tutor/internal/service/auth"
)

const (
	minJanitorInterval = 10 * time.Second
	maxJanitorInterval = time.Minute
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config
	logger *slog.Logger

	// Model access
	gateway gateway.Gateway

	// Sessions and their tokens
	registry *chat.Registry
	tokens   auth.SessionTokenService

	// Event system
	eventEmitter *events.InMemoryEventEmitter
	feedHub      *api.FeedHub
}

// newApplication creates a new application instance backed by the Gemini
// gateway described in cfg.LLM.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	gw, err := gemini.NewGateway(ctx, logger.With("component", "gemini_gateway"), cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini gateway: %w", err)
	}
	logger.Info("Gemini gateway initialized successfully")

	return newApplicationWithGateway(cfg, logger, gw)
}

// newApplicationWithGateway wires every component around an existing gateway.
func newApplicationWithGateway(cfg *config.Config, logger *slog.Logger, gw gateway.Gateway) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		gateway: gw,
	}

	var err error
	app.tokens, err = auth.NewSessionTokenService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session token service: %w", err)
	}
	logger.Info("Session token service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	questions, err := domain.LoadQuizBank(cfg.Chat.QuizBankPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz bank: %w", err)
	}
	logger.Info("Quiz bank loaded",
		"questions", len(questions),
		"custom_path", cfg.Chat.QuizBankPath != "")

	// Audit logging first, then the live feed
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(events.NewAuditLogger(logger))
	app.feedHub = api.NewFeedHub(logger)
	app.eventEmitter.RegisterHandler(app.feedHub)

	// RequestTimeout covers every retry attempt of a background model call
	app.registry = chat.NewRegistry(chat.Deps{
		Gateway:        gw,
		Questions:      questions,
		Scheduler:      chat.WallClock{},
		QuestionDelay:  cfg.Chat.QuestionDelay(),
		RequestTimeout: cfg.LLM.RequestTimeout() * time.Duration(cfg.LLM.MaxRetries+1),
		Emitter:        app.eventEmitter,
		Logger:         logger,
	}, chat.RegistrySettings{
		TTL:         cfg.Chat.SessionTTL(),
		MaxSessions: cfg.Chat.MaxSessions,
	}, logger)
	app.registry.StartJanitor(janitorInterval(cfg.Chat.SessionTTL()))

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run serves HTTP on the configured port until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", app.config.Server.Port))
	if err != nil {
		app.cleanup()
		return fmt.Errorf("failed to listen on port %d: %w", app.config.Server.Port, err)
	}

	if err := app.startHTTPServer(ctx, ln, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.registry != nil {
		app.registry.Close()
	}
	app.logger.Info("Application shutdown completed")
}

// janitorInterval sweeps a few times per TTL without spinning on short TTLs.
func janitorInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < minJanitorInterval {
		return minJanitorInterval
	}
	if interval > maxJanitorInterval {
		return maxJanitorInterval
	}
	return interval
}
