package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	applogger "OmniTrade/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type handlerFunc struct {
	topic string
	fn    func(context.Context, []byte) error
}

func (h handlerFunc) Topic() string                              { return h.topic }
func (h handlerFunc) Handle(ctx context.Context, b []byte) error { return h.fn(ctx, b) }

func TestProducerEncodesJSON(t *testing.T) {
	w := &fakeWriter{}
	reg := prometheus.NewRegistry()
	p := NewProducerWithWriter(w, WithProducerMetrics(reg))

	require.NoError(t, p.Publish(context.Background(), "omnitrade.snapshots", []byte("k"), map[string]int{"health": 98}))
	require.NoError(t, p.PublishMessage(context.Background(), "omnitrade.logs", "raw"))

	require.Len(t, w.msgs, 2)
	var decoded map[string]int
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, 98, decoded["health"])
	assert.Equal(t, "omnitrade.snapshots", w.msgs[0].Topic)
	assert.Equal(t, []byte("raw"), w.msgs[1].Value)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.msgs.WithLabelValues("omnitrade.snapshots", "snappy", "ok")))
}

func TestProducerWrapsWriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := NewProducerWithWriter(w)
	err := p.Publish(context.Background(), "t", nil, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func newTestConsumer(t *testing.T, retry int) *Consumer {
	t.Helper()
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(retry, time.Millisecond, time.Millisecond),
		WithConsumerLogger(applogger.Nop()),
	)
	require.NoError(t, err)
	return c
}

func TestConsumerProcessRetriesThenSucceeds(t *testing.T) {
	c := newTestConsumer(t, 3)
	calls := 0
	c.RegisterHandler(handlerFunc{topic: "metrics", fn: func(context.Context, []byte) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}})

	err := c.process(&message{topic: "metrics", km: kafka.Message{Value: []byte("{}")}})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestConsumerProcessGivesUpAndSendsToDLQ(t *testing.T) {
	c := newTestConsumer(t, 1)
	dlq := &fakeWriter{}
	c.dlq = dlq
	c.cfg.DLQTopic = "metrics.dlq"
	c.RegisterHandler(handlerFunc{topic: "metrics", fn: func(context.Context, []byte) error {
		return errors.New("bad payload")
	}})

	err := c.process(&message{topic: "metrics", km: kafka.Message{Value: []byte("nope")}})
	require.Error(t, err)
	require.Len(t, dlq.msgs, 1)
	assert.Equal(t, "metrics.dlq", dlq.msgs[0].Topic)
	assert.Equal(t, []byte("metrics"), dlq.msgs[0].Headers[0].Value)
}

func TestConsumerProcessRecoversPanic(t *testing.T) {
	c := newTestConsumer(t, 0)
	c.RegisterHandler(handlerFunc{topic: "metrics", fn: func(context.Context, []byte) error { panic("boom") }})
	assert.Error(t, c.process(&message{topic: "metrics", km: kafka.Message{Value: []byte("{}")}}))
}

func TestHookChainThreadsTraceAndRejectsEmpty(t *testing.T) {
	c := newTestConsumer(t, 0)
	c.WithConsumerHook(NewHookChain(TraceHook{}, RejectEmptyHook{}, LoggingHook{Logger: applogger.Nop()}))

	var seen string
	c.RegisterHandler(handlerFunc{topic: "metrics", fn: func(ctx context.Context, _ []byte) error {
		seen = TraceIDFrom(ctx)
		return nil
	}})

	km := kafka.Message{Value: []byte("{}"), Headers: []kafka.Header{{Key: "trace_id", Value: []byte("abc")}}}
	require.NoError(t, c.process(&message{topic: "metrics", km: km}))
	assert.Equal(t, "abc", seen)

	err := c.process(&message{topic: "metrics", km: kafka.Message{}})
	var he *HookError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "ERR_EMPTY", he.Code)
}

func TestBackoffWithJitterBounds(t *testing.T) {
	for attempt := 1; attempt < 10; attempt++ {
		d := backoffWithJitter(10*time.Millisecond, 100*time.Millisecond, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 100*time.Millisecond)
	}
}
