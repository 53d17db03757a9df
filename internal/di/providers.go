package di

import (
	"fmt"

	"OmniTrade/internal/domain/models"
	"OmniTrade/internal/domain/repository"
	"OmniTrade/internal/handler/api"
	"OmniTrade/internal/handler/ws"
	mid "OmniTrade/internal/middleware"
	internalrepo "OmniTrade/internal/repository"
	"OmniTrade/internal/service/ratelimit"
	"OmniTrade/internal/services/advice"
	"OmniTrade/internal/services/fleet"
	"OmniTrade/internal/services/market"
	"OmniTrade/internal/usecase"
	"OmniTrade/pkg/cache"
	"OmniTrade/pkg/config"
	xhttp "OmniTrade/pkg/http"
	pkgkafka "OmniTrade/pkg/kafka"
	applogger "OmniTrade/pkg/logger"
	"OmniTrade/pkg/metrics"
	"OmniTrade/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// ProvideLogger builds the process logger from the logging section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Logging.Config)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates the Prometheus registry served on /metrics.
func ProvideRegistry() *prometheus.Registry {
	return metrics.NewRegistry()
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideCache opens the configured advice cache backend.
func ProvideCache(cfg *config.Config) (cache.Service, func(), error) {
	svc, closer, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, nil, fmt.Errorf("cache: %w", err)
	}
	return svc, func() { _ = closer.Close() }, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when kafka is
// disabled.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry, l *applogger.Logger) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithProducerMetrics(reg),
		pkgkafka.WithProducerLogger(l),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideCompleter returns the Anthropic client, or an untyped nil when no
// key is configured so the requester falls back without dialing.
func ProvideCompleter(cfg *config.Config) advice.Completer {
	c := advice.NewAnthropicCompleter(cfg.Advice.APIKey, cfg.Advice.Model, cfg.Advice.MaxTokens)
	if c == nil {
		return nil
	}
	return c
}

// ProvideAdviceRequester wraps the completer with timeout, cache and
// fallback handling.
func ProvideAdviceRequester(
	cfg *config.Config,
	completer advice.Completer,
	svc cache.Service,
	m repository.Metrics,
	l *applogger.Logger,
) repository.AdviceRequester {
	opts := []advice.Option{advice.WithTimeout(cfg.Advice.Timeout)}
	if cfg.Advice.Cache {
		opts = append(opts, advice.WithCache(svc, cfg.Cache.TTL))
	}
	if completer == nil {
		l.Warn("ANTHROPIC_API_KEY not set, advice panel will show the fallback text")
	}
	return advice.NewRequester(completer, m, l.With(applogger.String("component", "advice")), opts...)
}

// ProvideRandomSource seeds the simulation when simulation.seed is set.
func ProvideRandomSource(cfg *config.Config) repository.RandomSource {
	if cfg.Simulation.Seed != 0 {
		return market.NewSeededSource(cfg.Simulation.Seed)
	}
	return market.GlobalSource{}
}

// ProvideDashboard creates the session controller.
func ProvideDashboard(
	cfg *config.Config,
	rnd repository.RandomSource,
	advisor repository.AdviceRequester,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Dashboard {
	opts := []usecase.DashboardOption{usecase.WithAdvicePolicy(usecase.AdvicePolicy(cfg.Advice.Policy))}
	if cfg.Simulation.Signals {
		opts = append(opts, usecase.WithSignals(fleet.NewSignals(rnd)))
	}
	return usecase.NewDashboard(
		market.NewSampler(rnd),
		fleet.NewRegistry(fleet.SeedBots()),
		advisor,
		m,
		l.With(applogger.String("component", "dashboard")),
		opts...,
	)
}

// ProvideRunner drives the sample and clock timers.
func ProvideRunner(cfg *config.Config, d *usecase.Dashboard, l *applogger.Logger) *usecase.Runner {
	return usecase.NewRunner(d, cfg.Simulation.SampleInterval, cfg.Simulation.ClockInterval, l)
}

// ProvideSnapshotPipeline publishes every dashboard change to Kafka through
// the buffering pipeline. Nil when kafka is disabled.
func ProvideSnapshotPipeline(
	cfg *config.Config,
	producer *pkgkafka.Producer,
	d *usecase.Dashboard,
	m repository.Metrics,
	l *applogger.Logger,
) *mid.SnapshotPipeline {
	if producer == nil {
		return nil
	}
	pub := internalrepo.NewKafkaSnapshotPublisher(producer, cfg.Kafka.SnapshotTopic)
	p := mid.NewSnapshotPipeline(pub, m, l.With(applogger.String("component", "snapshot_pipeline")),
		mid.WithBufferSize(cfg.Kafka.Pipeline.BufferSize),
		mid.WithBackoff(cfg.Kafka.Pipeline.BackoffMin, cfg.Kafka.Pipeline.BackoffMax),
	)
	d.Subscribe(func(s *models.Snapshot) { p.Enqueue(s) })
	return p
}

// ProvideKafkaConsumer creates the external metrics consumer. Nil when
// kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, reg *prometheus.Registry, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerMetrics(reg),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(
		pkgkafka.TraceHook{},
		pkgkafka.RejectEmptyHook{},
		pkgkafka.LoggingHook{Logger: l},
	))
	return consumer, nil
}

// ProvideMetricsHandler applies metrics messages to the dashboard.
func ProvideMetricsHandler(cfg *config.Config, d *usecase.Dashboard, m repository.Metrics) *usecase.MetricsHandler {
	return usecase.NewMetricsHandler(cfg.Kafka.MetricsTopic, d, m)
}

// ProvideAPIHandler registers the operator routes.
func ProvideAPIHandler(cfg *config.Config, d *usecase.Dashboard, l *applogger.Logger) *api.DashboardEchoHandler {
	limiter := ratelimit.New(cfg.RateLimit.Burst, cfg.RateLimit.PerSecond)
	return api.NewDashboardEchoHandler(l, d, limiter)
}

// ProvideStreamHandler serves the telemetry WebSocket.
func ProvideStreamHandler(cfg *config.Config, d *usecase.Dashboard, m repository.Metrics, l *applogger.Logger) *ws.StreamHandler {
	return ws.NewStreamHandler(d, m, l,
		ws.WithInterval(cfg.Stream.Interval),
		ws.WithWriteTimeout(cfg.Stream.WriteTimeout),
		ws.WithPingInterval(cfg.Stream.PingInterval),
	)
}

// ProvideHTTPServer assembles the echo server.
func ProvideHTTPServer(
	cfg *config.Config,
	reg *prometheus.Registry,
	l *applogger.Logger,
	apiHandler *api.DashboardEchoHandler,
	stream *ws.StreamHandler,
) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithLogger(l.With(applogger.String("component", "http"))),
		xhttp.WithQuietPaths("/ws", "/metrics"),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(reg, cfg.Metrics.SlowThreshold))
	}
	return xhttp.NewServer([]xhttp.Handler{apiHandler, stream}, opts...)
}

// ProvideApp creates the application server. When kafka is enabled the
// producer also receives the deduplicated error log stream.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	runner *usecase.Runner,
	httpServer *xhttp.Server,
	stream *ws.StreamHandler,
	producer *pkgkafka.Producer,
	consumer *pkgkafka.Consumer,
	kh *usecase.MetricsHandler,
	pipeline *mid.SnapshotPipeline,
) (*server.App, func()) {
	cleanup := func() {}
	if producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Logging.CollectorInterval,
			CountThreshold: cfg.Logging.CollectorMax,
			Topic:          cfg.Logging.CollectorTopic,
			Publisher:      producer,
		})
		cleanup = l.RemoveCollector
	}

	opts := []server.Option{server.WithConsumer(consumer, kh)}
	if pipeline != nil {
		opts = append(opts, server.WithPipeline(pipeline))
	}
	return server.New(cfg, l, runner, httpServer, stream, opts...), cleanup
}
