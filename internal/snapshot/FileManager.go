package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"socialstats/internal/models"
	"socialstats/internal/providers"
	"time"
)

type FileManagerInterface interface {
	Load(fileName string) *models.Snapshot
	Save(fileName string, snap *models.Snapshot) error
}

type FileManager struct {
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewFileManager(logger providers.Logger, metrics providers.MetricsProviderInterface) FileManagerInterface {
	return &FileManager{
		logger:  logger,
		metrics: metrics,
	}
}

// Load returns the stored snapshot, or the default one when the file is
// missing or unusable. It never fails: a broken file must not stop a run.
func (f *FileManager) Load(fileName string) *models.Snapshot {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if !os.IsNotExist(err) {
			f.logger.Warnf(providers.TypeApp, "Could not read %s, starting from defaults: %s", fileName, err)
		}
		return models.DefaultSnapshot()
	}

	snap, err := models.ParseSnapshot(data)
	if err != nil {
		f.logger.Warnf(providers.TypeApp, "Ignoring stored snapshot %s, starting from defaults: %s", fileName, err)
		return models.DefaultSnapshot()
	}
	return snap
}

// Save writes the snapshot next to the target and renames it into place, so
// readers only ever see a complete file.
func (f *FileManager) Save(fileName string, snap *models.Snapshot) error {
	start := time.Now()
	defer func() {
		f.metrics.ObservePersistenceDuration(time.Since(start))
	}()

	data, err := snap.Encode()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(fileName); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	if err = os.Rename(tmpFile, fileName); err != nil {
		os.Remove(tmpFile)
		return err
	}
	return nil
}
