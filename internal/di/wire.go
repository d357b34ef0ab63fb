//go:build wireinject
// +build wireinject

package di

import (
	"StressWatch/pkg/config"
	"StressWatch/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideDedupStore,

		// Repositories
		ProvideResultStore,
		ProvideAlertPublisher,

		// Engine
		ProvideDefinitions,
		ProvideClassifier,
		ProvideStrainCalculator,
		ProvideAlertEngine,
		ProvideCycleRunner,
		ProvideObservationsHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
