//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"replyguy/internal"
	"replyguy/internal/bot"
	"replyguy/internal/controllers"
	"replyguy/internal/ledger"
	"replyguy/internal/providers"
	"replyguy/internal/registry"
	"replyguy/internal/services"
	"replyguy/internal/structures"
	"replyguy/internal/sweep"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewCacheProvider,
		providers.NewMetricsProvider,
		providers.NewSessionProvider,
		providers.NewNotifierProvider,

		registry.NewRegistry,
		ledger.NewStore,
		services.NewTrackerService,
		services.NewReportService,
		sweep.NewZstdCompressor,
		sweep.NewScheduler,
		bot.NewBot,
		controllers.NewHealthController,
		controllers.NewStatusController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
