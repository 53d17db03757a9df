package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"OmniTrade/internal/handler/ws"
	mid "OmniTrade/internal/middleware"
	"OmniTrade/internal/usecase"
	"OmniTrade/pkg/config"
	xhttp "OmniTrade/pkg/http"
	pkgkafka "OmniTrade/pkg/kafka"
	applogger "OmniTrade/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	runner     *usecase.Runner
	httpServer *xhttp.Server
	stream     *ws.StreamHandler
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
	pipeline   *mid.SnapshotPipeline
}

// Option attaches optional infrastructure to the App.
type Option func(*App)

// WithConsumer starts consumer with kh registered when the app runs.
func WithConsumer(consumer *pkgkafka.Consumer, kh pkgkafka.MessageHandler) Option {
	return func(a *App) {
		if consumer != nil && kh != nil {
			a.consumer, a.kh = consumer, kh
		}
	}
}

// WithPipeline starts the snapshot pipeline's background flusher.
func WithPipeline(p *mid.SnapshotPipeline) Option {
	return func(a *App) { a.pipeline = p }
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	runner *usecase.Runner,
	httpServer *xhttp.Server,
	stream *ws.StreamHandler,
	opts ...Option,
) *App {
	a := &App{
		cfg:        cfg,
		logger:     l,
		runner:     runner,
		httpServer: httpServer,
		stream:     stream,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run starts every component and blocks until ctx ends, a signal arrives or
// the HTTP listener fails.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.pipeline != nil {
		a.pipeline.Start(ctx)
	}

	if a.consumer != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(); err != nil {
			return err
		}
		a.logger.Info("metrics consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}

	simCtx, cancelSim := context.WithCancel(context.Background())
	defer cancelSim()
	g := new(errgroup.Group)
	g.Go(func() error { return a.runner.Run(simCtx) })

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-a.httpServer.Errors():
	}

	a.shutdown(cancelSim, g)
	return runErr
}

// shutdown stops intake first, then drains the simulation, then closes
// the outbound infrastructure.
func (a *App) shutdown(cancelSim context.CancelFunc, g *errgroup.Group) {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}
	if err := a.stream.Close(); err != nil {
		a.logger.Warn("stream close error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.logger.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	cancelSim()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Warn("simulation stopped with error", applogger.Error(err))
	}

	if a.pipeline != nil {
		if err := a.pipeline.Close(); err != nil {
			a.logger.Warn("snapshot pipeline close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
}
