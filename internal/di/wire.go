//go:build wireinject
// +build wireinject

package di

import (
	"TradePulse/pkg/config"
	"TradePulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideCandleCache,
		ProvideStateStore,
		ProvideEventPublisher,
		ProvideTradeArchive,

		// Services
		ProvideMarketData,
		ProvidePriceStream,
		ProvideSentiment,

		// Engines
		ProvideIndicatorEngine,
		ProvideScorer,
		ProvideLearningEngine,
		ProvideBook,

		// Use case and delivery
		ProvideCycle,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
