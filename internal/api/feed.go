package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/phrazzld/obsolescence-tutor/internal/chat"
	"github.com/phrazzld/obsolescence-tutor/internal/events"
	"github.com/phrazzld/obsolescence-tutor/internal/platform/logger"
)

const (
	feedBufferSize   = 16
	feedWriteTimeout = 5 * time.Second
)

type feedSubscriber struct {
	ch chan []byte
}

// FeedHub fans conversation events out to the WebSocket connections of
// their session. It implements events.EventHandler.
//
// Every event carries a full view with a revision number, so a subscriber
// that falls behind loses its oldest queued events rather than blocking
// the controller.
type FeedHub struct {
	logger *slog.Logger

	mu          sync.Mutex
	subscribers map[uuid.UUID]map[*feedSubscriber]struct{}
}

var _ events.EventHandler = (*FeedHub)(nil)

// NewFeedHub creates an empty hub.
func NewFeedHub(logger *slog.Logger) *FeedHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedHub{
		logger:      logger.With("component", "feed_hub"),
		subscribers: make(map[uuid.UUID]map[*feedSubscriber]struct{}),
	}
}

// HandleEvent queues the event for every subscriber of its session.
func (h *FeedHub) HandleEvent(ctx context.Context, event *events.ConversationEvent) error {
	msg, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subscribers[event.SessionID] {
		select {
		case sub.ch <- msg:
			continue
		default:
		}

		// full: drop the oldest queued event
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- msg:
		default:
		}
		h.logger.DebugContext(ctx, "feed subscriber lagging, dropped oldest event",
			"session_id", event.SessionID.String())
	}
	return nil
}

// Subscribers returns the number of open feeds for a session.
func (h *FeedHub) Subscribers(sessionID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[sessionID])
}

func (h *FeedHub) subscribe(sessionID uuid.UUID) *feedSubscriber {
	sub := &feedSubscriber{ch: make(chan []byte, feedBufferSize)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[sessionID] == nil {
		h.subscribers[sessionID] = make(map[*feedSubscriber]struct{})
	}
	h.subscribers[sessionID][sub] = struct{}{}
	return sub
}

func (h *FeedHub) unsubscribe(sessionID uuid.UUID, sub *feedSubscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers[sessionID], sub)
	if len(h.subscribers[sessionID]) == 0 {
		delete(h.subscribers, sessionID)
	}
}

// FeedHandler serves GET /api/session/feed.
type FeedHandler struct {
	sessions       SessionStore
	hub            *FeedHub
	originPatterns []string
	logger         *slog.Logger
}

// NewFeedHandler creates a feed handler. allowedOrigins are the CORS
// origins; cross-origin WebSocket handshakes from other hosts are refused.
func NewFeedHandler(sessions SessionStore, hub *FeedHub, allowedOrigins []string, logger *slog.Logger) *FeedHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for FeedHandler")
	}

	return &FeedHandler{
		sessions:       sessions,
		hub:            hub,
		originPatterns: originPatterns(allowedOrigins),
		logger:         logger.With(slog.String("component", "feed_handler")),
	}
}

// ServeHTTP upgrades the request to a WebSocket, sends a snapshot of the
// session and then every event the session emits until either side closes.
func (h *FeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	controller, ok := sessionFromRequest(w, r, h.sessions)
	if !ok {
		return
	}
	id := controller.ID()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		log.Warn("failed to accept feed connection", "error", err, "session_id", id.String())
		return
	}
	defer conn.CloseNow()

	// subscribe before the snapshot so nothing emitted in between is lost
	sub := h.hub.subscribe(id)
	defer h.hub.unsubscribe(id, sub)

	log.Info("feed connected", "session_id", id.String())

	ctx := conn.CloseRead(r.Context())

	snapshot, err := events.NewConversationEvent(id, events.TypeSessionSnapshot,
		chat.EventPayload{View: controller.View()})
	if err != nil {
		log.Error("failed to build feed snapshot", "error", err)
		conn.Close(websocket.StatusInternalError, "snapshot failed")
		return
	}
	msg, err := json.Marshal(snapshot)
	if err != nil {
		log.Error("failed to encode feed snapshot", "error", err)
		conn.Close(websocket.StatusInternalError, "snapshot failed")
		return
	}

	for {
		if err := writeFeedMessage(ctx, conn, msg); err != nil {
			if !errors.Is(err, context.Canceled) && websocket.CloseStatus(err) == -1 {
				log.Debug("feed write failed", "error", err, "session_id", id.String())
			}
			return
		}

		select {
		case <-ctx.Done():
			log.Debug("feed closed", "session_id", id.String())
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case msg = <-sub.ch:
		}
	}
}

func writeFeedMessage(ctx context.Context, conn *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, feedWriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, msg)
}

// originPatterns turns CORS origins such as "https://app.example.com" into
// the host patterns websocket.Accept matches against.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, origin := range origins {
		if origin == "*" {
			patterns = append(patterns, "*")
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			continue
		}
		patterns = append(patterns, u.Host)
	}
	return patterns
}
