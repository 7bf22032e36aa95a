//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"socialstats/internal"
	"socialstats/internal/adapters"
	"socialstats/internal/controllers"
	"socialstats/internal/fetch"
	"socialstats/internal/providers"
	"socialstats/internal/services"
	"socialstats/internal/snapshot"
	"socialstats/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		provideLogger,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		fetch.NewClient,
		wire.Bind(new(fetch.Fetcher), new(*fetch.Client)),
		adapters.NewAdapters,

		snapshot.NewFileManager,
		services.NewCollectorService,
		provideRunner,
		snapshot.NewScheduler,

		controllers.NewHealthController,
		controllers.NewSnapshotController,
		controllers.NewRunController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil, nil
}
