//go:build wireinject
// +build wireinject

package di

import (
	"StockCast/pkg/config"
	"StockCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// The cleanup closes infrastructure clients and must run after App.Run.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Forecasting core
		ProvideModel,
		ProvideRuntime,
		ProvideForecastService,

		// Infrastructure clients
		ProvideCache,
		ProvideClickHouseClient,
		ProvideHistoryStore,
		ProvidePublisher,

		// Use cases and transport
		ProvideLimiter,
		ProvideForecastUseCase,
		ProvideForecastHandler,
		ProvideHTTPServer,

		ProvideApp,
	)
	return nil, nil, nil
}
