package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/obsolescence-tutor/internal/api"
	apiMiddleware "github.com/phrazzld/obsolescence-tutor/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	sessionHandler := api.NewSessionHandler(app.registry, app.tokens, app.logger)
	feedHandler := api.NewFeedHandler(app.registry, app.feedHub, app.config.CORS.AllowedOrigins, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.tokens)
	limiter := apiMiddleware.NewRateLimiter(app.config.Chat.RateLimitPerMinute, app.config.Chat.RateLimitBurst)

	r.Route("/api", func(r chi.Router) {
		// Session creation is public; limited per client address
		r.With(limiter.Limit).Post("/sessions", sessionHandler.CreateSession)

		// Session-scoped routes
		r.Route("/session", func(r chi.Router) {
			r.With(authMiddleware.AuthenticateWithQuery).Get("/feed", feedHandler.ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Get("/", sessionHandler.GetSession)

				r.Group(func(r chi.Router) {
					r.Use(limiter.Limit)
					r.Post("/messages", sessionHandler.PostMessage)
					r.Post("/suggestions", sessionHandler.PostSuggestion)
					r.Post("/quiz/answers", sessionHandler.PostQuizAnswer)
				})
			})
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
