// Package feed consumes the telemetry WebSocket stream.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"OmniTrade/internal/domain/models"
	xlogger "OmniTrade/pkg/logger"

	"github.com/gorilla/websocket"
)

// Listener receives every decoded telemetry document.
type Listener func(models.Telemetry)

// Client dials the telemetry stream and fans frames out to listeners. It
// redials after a fixed delay whenever the connection drops, until its
// context ends.
type Client struct {
	url            string
	reconnectDelay time.Duration
	dialer         *websocket.Dialer
	logger         *xlogger.Logger

	mu        sync.Mutex
	listeners map[int]Listener
	nextID    int
	connected atomic.Bool
}

type Option func(*Client)

// WithReconnectDelay sets the pause between connection attempts.
func WithReconnectDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.reconnectDelay = d
		}
	}
}

func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

func New(url string, l *xlogger.Logger, opts ...Option) *Client {
	c := &Client{
		url:            url,
		reconnectDelay: 5 * time.Second,
		dialer:         websocket.DefaultDialer,
		logger:         l,
		listeners:      make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers fn and returns a func that removes it.
func (c *Client) Subscribe(fn Listener) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// IsConnected reports whether a connection is currently open.
func (c *Client) IsConnected() bool { return c.connected.Load() }

// Run connects and keeps reconnecting until ctx is cancelled. It always
// returns nil once ctx ends.
func (c *Client) Run(ctx context.Context) error {
	for {
		err := c.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		c.logger.Warn("telemetry stream disconnected, retrying",
			xlogger.String("url", c.url),
			xlogger.Duration("retry_in_ms", c.reconnectDelay),
			xlogger.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.reconnectDelay):
		}
	}
}

// session runs one connection until it fails.
func (c *Client) session(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("feed connect: %w", err)
	}
	c.connected.Store(true)
	defer c.connected.Store(false)
	c.logger.Info("telemetry stream connected", xlogger.String("url", c.url))

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()
	defer conn.Close()

	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("feed read: %w", err)
		}
		var tel models.Telemetry
		if err := json.Unmarshal(b, &tel); err != nil {
			c.logger.Warn("telemetry frame dropped", xlogger.Error(err))
			continue
		}
		c.dispatch(tel)
	}
}

func (c *Client) dispatch(tel models.Telemetry) {
	c.mu.Lock()
	ls := make([]Listener, 0, len(c.listeners))
	for id := 0; id < c.nextID; id++ {
		if fn, ok := c.listeners[id]; ok {
			ls = append(ls, fn)
		}
	}
	c.mu.Unlock()

	for _, fn := range ls {
		fn(tel)
	}
}
