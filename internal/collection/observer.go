package collection

import (
	"path/filepath"

	"go.uber.org/zap"

	"mtgcollections/internal/types"
)

// Observer receives progress events from a batch run. The processor only
// emits events; rendering them is up to the implementation.
// Indices are 1-based.
type Observer interface {
	// OnStart is called once the image list is known.
	OnStart(total int)
	// OnFile is called before a file is sent for extraction.
	OnFile(index, total int, path string)
	// OnFileFailed is called when a file is skipped because of an error.
	OnFileFailed(index, total int, path string, err error)
	// OnDone is called after the last file with the accumulated collection.
	OnDone(c types.Collection, failed int)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) OnStart(int)                          {}
func (NopObserver) OnFile(int, int, string)              {}
func (NopObserver) OnFileFailed(int, int, string, error) {}
func (NopObserver) OnDone(types.Collection, int)         {}

// LogObserver reports progress through a zap logger.
type LogObserver struct {
	Logger *zap.Logger
}

func (o LogObserver) OnStart(total int) {
	o.Logger.Info("Found image files to process", zap.Int("total", total))
}

func (o LogObserver) OnFile(index, total int, path string) {
	o.Logger.Info("Processing file",
		zap.Int("index", index),
		zap.Int("total", total),
		zap.String("file", filepath.Base(path)))
}

func (o LogObserver) OnFileFailed(index, total int, path string, err error) {
	o.Logger.Warn("Skipping file after extraction failure",
		zap.Int("index", index),
		zap.Int("total", total),
		zap.String("file", path),
		zap.Error(err))
}

func (o LogObserver) OnDone(c types.Collection, failed int) {
	o.Logger.Info("Batch complete",
		zap.Int("cards", c.Len()),
		zap.Int("failed_files", failed))
}
