// Package collection turns a directory of card photos into one card
// collection and writes it out as a JSON dump plus per-language summaries.
package collection

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mtgcollections/internal/logging"
	"mtgcollections/internal/perception"
	"mtgcollections/internal/types"
)

// Extractor turns one photo into the cards visible in it.
// *perception.VisionClient and *perception.TracingExtractor satisfy it.
type Extractor = perception.CardExtractor

// Processor runs extraction over every photo in a directory.
type Processor struct {
	extractor Extractor
	logger    *zap.Logger
	observer  Observer
}

// NewProcessor creates a processor. A nil observer reports through the
// logger.
func NewProcessor(extractor Extractor, logger *zap.Logger, observer Observer) *Processor {
	logger = logging.For(logger, logging.CategoryBatch)
	if observer == nil {
		observer = LogObserver{Logger: logger}
	}
	return &Processor{
		extractor: extractor,
		logger:    logger,
		observer:  observer,
	}
}

// ProcessDirectory extracts cards from every photo directly inside dir and
// returns them as one collection, in file order then reply order.
//
// A file that cannot be read or extracted is reported and skipped; it never
// aborts the batch. Only a directory read error or a cancelled context is
// returned as an error.
func (p *Processor) ProcessDirectory(ctx context.Context, dir string) (types.Collection, error) {
	runLog := p.logger.With(zap.String("run_id", uuid.NewString()), zap.String("dir", dir))

	files, err := ListImages(dir)
	if err != nil {
		return types.Collection{}, err
	}

	total := len(files)
	p.observer.OnStart(total)
	runLog.Debug("Listed images", zap.Int("total", total))

	all := types.NewCollection()
	failed := 0
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			runLog.Warn("Batch cancelled", zap.Int("processed", i), zap.Int("total", total))
			return types.Collection{}, err
		}

		index := i + 1
		p.observer.OnFile(index, total, file)

		cards, err := p.processFile(ctx, file)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				runLog.Warn("Batch cancelled", zap.Int("processed", i), zap.Int("total", total))
				return types.Collection{}, ctxErr
			}
			failed++
			p.observer.OnFileFailed(index, total, file, err)
			runLog.Debug("File skipped", zap.String("file", file), zap.Error(err))
			continue
		}

		all.Append(cards.Cards...)
		runLog.Debug("File processed", zap.String("file", file), zap.Int("cards", cards.Len()))
	}

	p.observer.OnDone(all, failed)
	return all, nil
}

func (p *Processor) processFile(ctx context.Context, path string) (types.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Collection{}, fmt.Errorf("failed to read image: %w", err)
	}
	cards, err := p.extractor.ExtractCards(ctx, data, perception.MIMETypeFor(path))
	if err != nil {
		return types.Collection{}, fmt.Errorf("extract %s: %w", path, err)
	}
	return cards, nil
}
