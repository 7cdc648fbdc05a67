//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"divelog/internal"
	"divelog/internal/controllers"
	"divelog/internal/logbook"
	"divelog/internal/providers"
	"divelog/internal/services"
	"divelog/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewNotifierProvider,

		logbook.NewZstdCompressor,
		services.NewLogbookService,
		logbook.NewFileManager,
		logbook.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
