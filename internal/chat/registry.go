package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RegistrySettings bounds the session table.
type RegistrySettings struct {
	// TTL is how long a session may stay idle before Sweep drops it.
	TTL time.Duration

	// MaxSessions caps concurrently registered sessions. Zero means no cap.
	MaxSessions int
}

type registryEntry struct {
	controller *Controller
	lastSeen   time.Time
}

// Registry holds one Controller per browser session. It is safe for
// concurrent use.
type Registry struct {
	deps     Deps
	settings RegistrySettings
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*registryEntry

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewRegistry creates an empty registry. Every controller it creates
// shares deps.
func NewRegistry(deps Deps, settings RegistrySettings, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Logger == nil {
		deps.Logger = logger
	}

	return &Registry{
		deps:     deps,
		settings: settings,
		logger:   logger.With("component", "session_registry"),
		now:      time.Now,
		sessions: make(map[uuid.UUID]*registryEntry),
		stop:     make(chan struct{}),
	}
}

// Create registers a new session and runs its bootstrap greeting. The
// session is registered even when the greeting fails; the failure is
// recorded in its view.
func (r *Registry) Create(ctx context.Context) (uuid.UUID, *Controller, error) {
	id := uuid.New()

	controller, err := NewController(id, r.deps)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to create controller: %w", err)
	}

	r.mu.Lock()
	if r.settings.MaxSessions > 0 && len(r.sessions) >= r.settings.MaxSessions {
		r.mu.Unlock()
		controller.Close()
		r.logger.WarnContext(ctx, "session limit reached", "max_sessions", r.settings.MaxSessions)
		return uuid.Nil, nil, ErrRegistryFull
	}
	r.sessions[id] = &registryEntry{controller: controller, lastSeen: r.now()}
	count := len(r.sessions)
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "session created", "session_id", id.String(), "session_count", count)

	if err := controller.Initialize(ctx); err != nil {
		r.Remove(id)
		return uuid.Nil, nil, fmt.Errorf("failed to initialize session: %w", err)
	}

	return id, controller, nil
}

// Get returns the session's controller and marks it as seen.
func (r *Registry) Get(id uuid.UUID) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	entry.lastSeen = r.now()
	return entry.controller, nil
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes and drops every session idle since before now minus the TTL.
// It returns how many sessions were dropped.
func (r *Registry) Sweep(now time.Time) int {
	if r.settings.TTL <= 0 {
		return 0
	}
	cutoff := now.Add(-r.settings.TTL)

	r.mu.Lock()
	var expired []*Controller
	for id, entry := range r.sessions {
		if entry.lastSeen.Before(cutoff) {
			expired = append(expired, entry.controller)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, c := range expired {
		c.Close()
		r.logger.Info("session expired", "session_id", c.ID().String())
	}
	return len(expired)
}

// StartJanitor sweeps expired sessions every interval until Close.
func (r *Registry) StartJanitor(interval time.Duration) {
	r.mu.Lock()
	if r.done != nil {
		r.mu.Unlock()
		return
	}
	r.done = make(chan struct{})
	r.mu.Unlock()

	go func() {
		defer close(r.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := r.Sweep(r.now()); n > 0 {
					r.logger.Debug("janitor swept sessions", "expired", n)
				}
			case <-r.stop:
				return
			}
		}
	}()
}

// Close stops the janitor and closes every session.
func (r *Registry) Close() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})

	r.mu.Lock()
	done := r.done
	controllers := make([]*Controller, 0, len(r.sessions))
	for id, entry := range r.sessions {
		controllers = append(controllers, entry.controller)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if done != nil {
		<-done
	}
	for _, c := range controllers {
		c.Close()
	}
}

// Remove closes and drops a session. It reports whether the session existed.
func (r *Registry) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		entry.controller.Close()
	}
	return ok
}
