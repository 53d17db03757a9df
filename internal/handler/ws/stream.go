// Package ws streams telemetry documents to dashboard clients.
package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"OmniTrade/internal/domain/models"
	domrepo "OmniTrade/internal/domain/repository"
	xlogger "OmniTrade/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// Source is the part of the dashboard the stream reads from.
type Source interface {
	Snapshot() *models.Snapshot
	Subscribe(fn func(*models.Snapshot)) (unsubscribe func())
}

// StreamHandler serves GET /ws. Each client gets the telemetry document on
// connect, after every state change and again every interval.
type StreamHandler struct {
	source       Source
	metrics      domrepo.Metrics
	logger       *xlogger.Logger
	upgrader     websocket.Upgrader
	interval     time.Duration
	writeTimeout time.Duration
	pingInterval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	clients int
}

type StreamOption func(*StreamHandler)

// WithInterval sets the periodic resend interval.
func WithInterval(d time.Duration) StreamOption {
	return func(h *StreamHandler) {
		if d > 0 {
			h.interval = d
		}
	}
}

func WithWriteTimeout(d time.Duration) StreamOption {
	return func(h *StreamHandler) {
		if d > 0 {
			h.writeTimeout = d
		}
	}
}

func WithPingInterval(d time.Duration) StreamOption {
	return func(h *StreamHandler) {
		if d > 0 {
			h.pingInterval = d
		}
	}
}

func NewStreamHandler(source Source, metrics domrepo.Metrics, l *xlogger.Logger, opts ...StreamOption) *StreamHandler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &StreamHandler{
		source:       source,
		metrics:      metrics,
		logger:       l,
		upgrader:     websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		interval:     2 * time.Second,
		writeTimeout: 5 * time.Second,
		pingInterval: 30 * time.Second,
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *StreamHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.Serve)
}

// Serve upgrades the request and blocks until the client leaves or the
// handler is closed.
func (h *StreamHandler) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", xlogger.Error(err))
		return nil
	}
	h.wg.Add(1)
	defer h.wg.Done()

	h.track(1)
	defer h.track(-1)
	h.stream(conn)
	return nil
}

// Clients reports the number of connected streams.
func (h *StreamHandler) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clients
}

// Close disconnects every client and waits for their loops to exit.
func (h *StreamHandler) Close() error {
	h.cancel()
	h.wg.Wait()
	return nil
}

func (h *StreamHandler) track(delta int) {
	h.mu.Lock()
	h.clients += delta
	n := h.clients
	h.mu.Unlock()
	h.metrics.RecordStreamClients(n)
}

func (h *StreamHandler) stream(conn *websocket.Conn) {
	defer conn.Close()

	// latest snapshot wins; a slow client skips intermediate versions
	changes := make(chan *models.Snapshot, 1)
	unsubscribe := h.source.Subscribe(func(s *models.Snapshot) {
		select {
		case changes <- s:
			return
		default:
		}
		select {
		case <-changes:
		default:
		}
		select {
		case changes <- s:
		default:
		}
	})
	defer unsubscribe()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	resend := time.NewTicker(h.interval)
	defer resend.Stop()
	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()

	var last uint64
	send := func(s *models.Snapshot) bool {
		if s.Version < last {
			return true
		}
		last = s.Version
		_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := conn.WriteJSON(s.Telemetry()); err != nil {
			h.logger.Debug("ws write failed", xlogger.Error(err))
			return false
		}
		return true
	}

	if !send(h.source.Snapshot()) {
		return
	}
	for {
		select {
		case <-h.ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(h.writeTimeout))
			return
		case <-gone:
			return
		case s := <-changes:
			if !send(s) {
				return
			}
		case <-resend.C:
			if !send(h.source.Snapshot()) {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.writeTimeout)); err != nil {
				return
			}
		}
	}
}
