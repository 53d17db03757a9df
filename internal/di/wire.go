//go:build wireinject
// +build wireinject

package di

import (
	"OmniTrade/pkg/config"
	"OmniTrade/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCache,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Services
		ProvideCompleter,
		ProvideAdviceRequester,
		ProvideRandomSource,

		// Use cases
		ProvideDashboard,
		ProvideRunner,
		ProvideMetricsHandler,
		ProvideSnapshotPipeline,

		// Transport
		ProvideAPIHandler,
		ProvideStreamHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
