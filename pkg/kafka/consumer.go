package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	applogger "OmniTrade/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

// MessageHandler handles messages from a specific topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

// ConsumerOption configures Consumer.
type ConsumerOption func(*ConsumerConfig)

// ConsumerConfig holds consumer configuration.
type ConsumerConfig struct {
	Brokers     []string
	GroupID     string
	WorkerCount int
	BufferSize  int
	RetryMax    int
	BackoffMin  time.Duration
	BackoffMax  time.Duration
	DLQTopic    string
	MinBytes    int
	MaxBytes    int
	Registerer  prometheus.Registerer
	Logger      *applogger.Logger
}

// WithConsumerBrokers sets Kafka brokers.
func WithConsumerBrokers(brokers []string) ConsumerOption {
	return func(c *ConsumerConfig) {
		c.Brokers = brokers
	}
}

// WithConsumerGroupID sets consumer group ID.
func WithConsumerGroupID(groupID string) ConsumerOption {
	return func(c *ConsumerConfig) {
		c.GroupID = groupID
	}
}

// WithConsumerWorkers sets number of worker goroutines.
func WithConsumerWorkers(count int) ConsumerOption {
	return func(c *ConsumerConfig) {
		if count > 0 {
			c.WorkerCount = count
		}
	}
}

// WithConsumerRetry configures retry attempts and backoff range.
func WithConsumerRetry(max int, backoffMin, backoffMax time.Duration) ConsumerOption {
	return func(c *ConsumerConfig) {
		c.RetryMax = max
		c.BackoffMin = backoffMin
		c.BackoffMax = backoffMax
	}
}

// WithConsumerDLQ sets a Kafka topic name for DLQ.
func WithConsumerDLQ(topic string) ConsumerOption {
	return func(c *ConsumerConfig) {
		c.DLQTopic = topic
	}
}

// WithConsumerBufferSize sets the internal channel buffer size.
func WithConsumerBufferSize(n int) ConsumerOption {
	return func(c *ConsumerConfig) {
		if n > 0 {
			c.BufferSize = n
		}
	}
}

// WithConsumerMetrics registers consumer collectors on reg.
func WithConsumerMetrics(reg prometheus.Registerer) ConsumerOption {
	return func(c *ConsumerConfig) {
		c.Registerer = reg
	}
}

// WithConsumerLogger sets the consumer logger.
func WithConsumerLogger(l *applogger.Logger) ConsumerOption {
	return func(c *ConsumerConfig) {
		c.Logger = l
	}
}

// Consumer wraps Kafka readers with a worker pool.
type Consumer struct {
	cfg      *ConsumerConfig
	readers  map[string]*kafka.Reader
	handlers map[string]MessageHandler
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
	msgChan  chan *message
	dlq      Writer
	hook     ConsumerHook
	metrics  *consumerMetrics
	logger   *applogger.Logger
}

type message struct {
	topic string
	km    kafka.Message
}

// NewConsumer creates a new Kafka consumer.
func NewConsumer(opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		GroupID:     "omnitrade",
		WorkerCount: 1,
		BufferSize:  16,
		RetryMax:    3,
		BackoffMin:  50 * time.Millisecond,
		BackoffMax:  2 * time.Second,
		MinBytes:    1,
		MaxBytes:    10e6,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}

	l := cfg.Logger
	if l == nil {
		l = applogger.Nop()
	}

	c := &Consumer{
		cfg:      cfg,
		readers:  make(map[string]*kafka.Reader),
		handlers: make(map[string]MessageHandler),
		stopChan: make(chan struct{}),
		msgChan:  make(chan *message, cfg.BufferSize),
		hook:     NoopHook{},
		logger:   l,
	}
	if cfg.Registerer != nil {
		c.metrics = newConsumerMetrics(cfg.Registerer)
	}

	if cfg.DLQTopic != "" {
		c.dlq = &kafka.Writer{Addr: kafka.TCP(cfg.Brokers...), Balancer: &kafka.LeastBytes{}}
	}

	return c, nil
}

// RegisterHandler registers a message handler for a specific topic.
func (c *Consumer) RegisterHandler(handler MessageHandler) {
	topic := handler.Topic()
	if _, ok := c.handlers[topic]; ok {
		c.logger.Warn("kafka handler already registered", applogger.String("topic", topic))
		return
	}
	c.handlers[topic] = handler
}

// WithConsumerHook sets a hook implementation for lifecycle events.
func (c *Consumer) WithConsumerHook(h ConsumerHook) {
	if h != nil {
		c.hook = h
	}
}

// Start creates one reader per registered topic and the worker pool.
func (c *Consumer) Start() error {
	if len(c.handlers) == 0 {
		return errors.New("no handlers registered")
	}

	for topic := range c.handlers {
		c.readers[topic] = kafka.NewReader(kafka.ReaderConfig{
			Brokers:  c.cfg.Brokers,
			Topic:    topic,
			GroupID:  c.cfg.GroupID,
			MinBytes: c.cfg.MinBytes,
			MaxBytes: c.cfg.MaxBytes,
		})
	}

	for i := 0; i < c.cfg.WorkerCount; i++ {
		c.wg.Add(1)
		go c.messageWorker()
	}

	for topic, reader := range c.readers {
		c.wg.Add(1)
		go c.consumeMessages(topic, reader)
	}

	c.logger.Info("kafka consumer started",
		applogger.Int("topics", len(c.readers)),
		applogger.Int("workers", c.cfg.WorkerCount),
		applogger.String("group", c.cfg.GroupID),
	)
	return nil
}

// Stop stops the Kafka consumer gracefully.
func (c *Consumer) Stop(ctx context.Context) error {
	var stopErr error

	c.stopOnce.Do(func() {
		close(c.stopChan)

		// readers unblock on Close, so close them before waiting
		for topic, reader := range c.readers {
			if err := reader.Close(); err != nil {
				c.logger.Warn("kafka reader close failed", applogger.String("topic", topic), applogger.Error(err))
			}
		}

		stopErr = c.waitForWg(ctx)

		if c.dlq != nil {
			if err := c.dlq.Close(); err != nil {
				c.logger.Warn("kafka dlq close failed", applogger.Error(err))
			}
		}

		if stopErr == nil {
			c.logger.Info("kafka consumer stopped")
		}
	})

	return stopErr
}

func (c *Consumer) waitForWg(ctx context.Context) error {
	doneChan := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(doneChan)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("timeout waiting for consumer to stop: %w", ctx.Err())
	case <-doneChan:
		return nil
	}
}

func (c *Consumer) consumeMessages(topic string, reader *kafka.Reader) {
	defer c.wg.Done()

	for {
		// FetchMessage does not auto-commit; the worker commits after handling
		km, err := reader.FetchMessage(context.Background())
		if err != nil {
			select {
			case <-c.stopChan:
				return
			default:
			}
			c.logger.Warn("kafka fetch failed", applogger.String("topic", topic), applogger.Error(err))
			time.Sleep(c.cfg.BackoffMin)
			continue
		}

		select {
		case c.msgChan <- &message{topic: topic, km: km}:
			c.metrics.queueDepth(topic, len(c.msgChan))
		case <-c.stopChan:
			return
		}
	}
}

func (c *Consumer) messageWorker() {
	defer c.wg.Done()

	for {
		select {
		case msg := <-c.msgChan:
			err := c.process(msg)
			if err == nil || c.dlq != nil {
				// commit after DLQ too so a poison message cannot loop forever
				if reader := c.readers[msg.topic]; reader != nil {
					_ = c.commitWithRetry(reader, msg.km, 3)
				}
			}
		case <-c.stopChan:
			return
		}
	}
}

// process runs the handler with hooks and retry. The final error, if any,
// has already been logged and sent to the DLQ.
func (c *Consumer) process(msg *message) (err error) {
	handler, ok := c.handlers[msg.topic]
	if !ok {
		return fmt.Errorf("no handler for topic %s", msg.topic)
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
			c.logger.Error("kafka handler panic", applogger.String("topic", msg.topic), applogger.Any("panic", r))
		}
		c.metrics.handled(msg.topic, time.Since(start), err)
	}()

	attempts := 0
	for {
		attempts++
		hctx, hmsg, hdata, berr := c.hook.BeforeHandle(context.Background(), msg.topic, msg.km, msg.km.Value)
		if berr != nil {
			err = berr
			break
		}

		err = handler.Handle(hctx, hdata)
		c.hook.AfterHandle(hctx, msg.topic, hmsg, hdata, err)
		if err == nil || attempts > c.cfg.RetryMax {
			break
		}
		c.hook.OnError(hctx, msg.topic, hmsg, hdata, err)

		select {
		case <-time.After(backoffWithJitter(c.cfg.BackoffMin, c.cfg.BackoffMax, attempts)):
		case <-c.stopChan:
			return err
		}
	}

	if err != nil {
		c.logger.Error("kafka message dropped",
			applogger.String("topic", msg.topic),
			applogger.Int("attempts", attempts),
			applogger.Error(err),
		)
		c.sendToDLQ(msg)
	}
	return err
}

func (c *Consumer) sendToDLQ(msg *message) {
	if c.dlq == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.dlq.WriteMessages(ctx, kafka.Message{
		Topic:   c.cfg.DLQTopic,
		Key:     msg.km.Key,
		Value:   msg.km.Value,
		Time:    time.Now(),
		Headers: []kafka.Header{{Key: "source_topic", Value: []byte(msg.topic)}},
	}); err != nil {
		c.logger.Error("kafka dlq write failed", applogger.String("topic", c.cfg.DLQTopic), applogger.Error(err))
	}
}

// commitWithRetry commits a single message offset with bounded retries.
func (c *Consumer) commitWithRetry(reader *kafka.Reader, km kafka.Message, max int) error {
	var err error
	for attempt := 1; attempt <= max; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = reader.CommitMessages(ctx, km)
		cancel()
		if err == nil {
			return nil
		}
		time.Sleep(backoffWithJitter(50*time.Millisecond, 500*time.Millisecond, attempt))
	}
	c.logger.Warn("kafka commit failed", applogger.Int("attempts", max), applogger.Error(err))
	return err
}

func backoffWithJitter(min, max time.Duration, attempt int) time.Duration {
	if min <= 0 {
		min = 50 * time.Millisecond
	}
	if max < min {
		max = min
	}
	exp := min * time.Duration(1<<uint(attempt-1))
	if exp > max || exp <= 0 {
		exp = max
	}
	// jitter up to 50%
	half := int64(exp) / 2
	if half <= 0 {
		return exp
	}
	return exp - time.Duration(rand.Int64N(half))
}

type consumerMetrics struct {
	depth   *prometheus.GaugeVec
	latency *prometheus.HistogramVec
	results *prometheus.CounterVec
}

func newConsumerMetrics(reg prometheus.Registerer) *consumerMetrics {
	f := promauto.With(reg)
	return &consumerMetrics{
		depth: f.NewGaugeVec(
			prometheus.GaugeOpts{Name: "omnitrade_kafka_consumer_queue_depth", Help: "Number of messages waiting in consumer queue"},
			[]string{"topic"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{Name: "omnitrade_kafka_consumer_handle_seconds", Help: "Handling time per message"},
			[]string{"topic"},
		),
		results: f.NewCounterVec(
			prometheus.CounterOpts{Name: "omnitrade_kafka_consumer_messages_total", Help: "Handled messages by result"},
			[]string{"topic", "result"},
		),
	}
}

func (m *consumerMetrics) queueDepth(topic string, n int) {
	if m == nil {
		return
	}
	m.depth.WithLabelValues(topic).Set(float64(n))
}

func (m *consumerMetrics) handled(topic string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.latency.WithLabelValues(topic).Observe(d.Seconds())
	m.results.WithLabelValues(topic, result).Inc()
}
