package ws

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"OmniTrade/internal/domain/models"
	xlogger "OmniTrade/pkg/logger"
	"OmniTrade/pkg/metrics"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is a minimal dashboard: set publishes a new version.
type fakeSource struct {
	mu   sync.Mutex
	snap models.Snapshot
	subs []func(*models.Snapshot)
}

func (f *fakeSource) Snapshot() *models.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.snap
	return &s
}

func (f *fakeSource) Subscribe(fn func(*models.Snapshot)) func() {
	f.mu.Lock()
	f.subs = append(f.subs, fn)
	f.mu.Unlock()
	return func() {}
}

func (f *fakeSource) set(health int) {
	f.mu.Lock()
	f.snap.Version++
	f.snap.Health = health
	s := f.snap
	subs := append([]func(*models.Snapshot)(nil), f.subs...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(&s)
	}
}

func (f *fakeSource) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func dial(t *testing.T, h *StreamHandler) *websocket.Conn {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readTelemetry(t *testing.T, conn *websocket.Conn) models.Telemetry {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var tel models.Telemetry
	require.NoError(t, conn.ReadJSON(&tel))
	return tel
}

func TestStreamSendsOnConnectAndOnChange(t *testing.T) {
	src := &fakeSource{snap: models.Snapshot{Version: 1, Health: 99, Mode: models.ModeFull, Scanners: models.DefaultScannerState()}}
	h := NewStreamHandler(src, metrics.Nop{}, xlogger.Nop(), WithInterval(time.Hour))
	conn := dial(t, h)

	first := readTelemetry(t, conn)
	assert.Equal(t, 99, first.Health)
	assert.Equal(t, models.UncertaintyLow, first.Scanners.Uncertainty)

	require.Eventually(t, func() bool { return src.subscribers() == 1 }, time.Second, 5*time.Millisecond)
	src.set(42)
	assert.Equal(t, 42, readTelemetry(t, conn).Health)
	assert.Equal(t, 1, h.Clients())
}

func TestStreamResendsOnInterval(t *testing.T) {
	src := &fakeSource{snap: models.Snapshot{Version: 1, Health: 80}}
	h := NewStreamHandler(src, metrics.Nop{}, xlogger.Nop(), WithInterval(20*time.Millisecond))
	conn := dial(t, h)

	for i := 0; i < 3; i++ {
		assert.Equal(t, 80, readTelemetry(t, conn).Health)
	}
}

func TestCloseDisconnectsClients(t *testing.T) {
	src := &fakeSource{snap: models.Snapshot{Version: 1}}
	h := NewStreamHandler(src, metrics.Nop{}, xlogger.Nop(), WithInterval(time.Hour))
	conn := dial(t, h)
	readTelemetry(t, conn)

	require.NoError(t, h.Close())
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	assert.Zero(t, h.Clients())
}
