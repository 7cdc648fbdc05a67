package logbook

import (
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"

	"divelog/internal/logbook/interfaces"
	"divelog/internal/models"
	"divelog/internal/providers"
	"divelog/internal/services"
)

type FileManager struct {
	service    services.LogbookServiceInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
}

func NewFileManager(compressor interfaces.CompressorInterface, service services.LogbookServiceInterface,
	logger providers.Logger, metrics providers.MetricsProviderInterface) *FileManager {
	return &FileManager{
		compressor: compressor,
		service:    service,
		logger:     logger,
		metrics:    metrics,
	}
}

// SaveToFile writes a compressed snapshot of the logbook. The file is
// written to a temporary name first and renamed into place so a crash
// never leaves a truncated logbook behind.
func (f *FileManager) SaveToFile(fileName string) error {
	start := time.Now()
	book := f.service.Snapshot()

	jsonData, err := json.Marshal(book)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
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
		return err
	}
	f.metrics.ObservePersistenceDuration(time.Since(start))
	return nil
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile restores the logbook from disk. A missing file is not an
// error; the service simply starts empty. Uncompressed files and bare dive
// arrays from early exports are migrated transparently.
func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		// Migration: early exports were plain JSON without compression.
		f.logger.Warnf(providers.TypeApp, "Logbook is not zstd compressed, trying plain JSON")
		decompressedData = data
	}

	var book models.LogbookV1
	if err := json.Unmarshal(decompressedData, &book); err == nil && book.Dives != nil {
		if book.Version > models.LogbookVersion {
			return fmt.Errorf("logbook version %d is newer than supported version %d",
				book.Version, models.LogbookVersion)
		}
		f.service.LoadSnapshot(&book)
		return nil
	}

	// Migration: bare dive array without the versioned envelope.
	f.logger.Warnf(providers.TypeApp, "Inconsistent logbook found, try to migrate from old data format")
	var dives []*models.Dive
	if err := json.Unmarshal(decompressedData, &dives); err != nil {
		f.logger.Warnf(providers.TypeApp, "Migration failed")
		return err
	}
	f.logger.Warnf(providers.TypeApp, "Migration from bare dive list successful")
	f.service.LoadSnapshot(&models.LogbookV1{Version: models.LogbookVersion, Dives: dives})
	return nil
}
