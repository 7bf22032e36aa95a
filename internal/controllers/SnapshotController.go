package controllers

import (
	"net/http"
	"os"
	"socialstats/internal/models"
	"socialstats/internal/providers"
	"socialstats/internal/services"
	"socialstats/internal/structures"
)

// SnapshotController serves the last saved snapshot document as is.
type SnapshotController struct {
	conf   *structures.Config
	logger providers.Logger
	cache  providers.CacheProviderInterface
}

func NewSnapshotController(conf *structures.Config, logger providers.Logger, cache providers.CacheProviderInterface) *SnapshotController {
	return &SnapshotController{
		conf:   conf,
		logger: logger,
		cache:  cache,
	}
}

func (sc *SnapshotController) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	data, ok := sc.cache.Get(services.SnapshotCacheKey)
	if !ok {
		var err error
		data, err = sc.readFromDisk()
		if err != nil {
			if os.IsNotExist(err) {
				http.Error(w, "Snapshot not available yet", http.StatusServiceUnavailable)
				return
			}
			sc.logger.Errorf(providers.TypeHTTP, "Error reading snapshot: %s", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		sc.cache.Set(services.SnapshotCacheKey, data)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// readFromDisk is used after a restart, before the first run has filled the cache.
func (sc *SnapshotController) readFromDisk() ([]byte, error) {
	data, err := os.ReadFile(sc.conf.Persistence.FilePath)
	if err != nil {
		return nil, err
	}
	snap, err := models.ParseSnapshot(data)
	if err != nil {
		return nil, err
	}
	return snap.Encode()
}
