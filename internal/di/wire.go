//go:build wireinject
// +build wireinject

package di

import (
	"SignalQuest/pkg/config"
	"SignalQuest/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation in wire_gen.go.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideMarketData,
		ProvideIndicators,
		ProvideSignalStore,

		// Pipeline stages
		ProvideCollector,
		ProvideTrainer,
		ProvideModelCache,
		ProvideGenerator,
		ProvideAdjuster,

		// Use case and transport
		ProvideSignalService,
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
