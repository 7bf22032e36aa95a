package di

import (
	"socialstats/internal/providers"
	"socialstats/internal/services"
	"socialstats/internal/snapshot"
	"socialstats/internal/structures"
)

// provideLogger closes the log file when the injector's cleanup runs.
func provideLogger(conf *structures.Config) (providers.Logger, func(), error) {
	logger, err := providers.NewLogProvider(conf)
	if err != nil {
		return nil, nil, err
	}
	return logger, logger.Close, nil
}

func provideRunner(collector services.CollectorServiceInterface) snapshot.Runner {
	return collector
}
