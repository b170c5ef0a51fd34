package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/appaudit/appaudit/internal/model"
)

// Factory builds the pipeline that processes one source workbook.
// Each source gets its own pipeline so steps can hold per-source state
// without synchronization.
type Factory func(source string) *Pipeline

// Result pairs a run report with the fatal error that stopped it, if any.
// A nil Err does not imply a clean run: artifact failures live on the
// report itself.
type Result struct {
	// Report is the run outcome, partial when Err is non-nil.
	Report *model.RunReport

	// Err is the fatal ingestion error that aborted this source's run.
	Err error
}

// BatchProcessor runs one pipeline per source workbook with bounded
// concurrency.
//
// Design decision: A fatal error in one source does not cancel the
// others. Sources are independent workbooks and the caller wants every
// result it can get; per-source errors are returned on each Result
// rather than through the group.
type BatchProcessor struct {
	factory   Factory
	batchSize int
	logger    *slog.Logger
}

// NewBatchProcessor creates a BatchProcessor.
// A batchSize below one is treated as one.
func NewBatchProcessor(factory Factory, batchSize int, logger *slog.Logger) *BatchProcessor {
	if batchSize < 1 {
		batchSize = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchProcessor{
		factory:   factory,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Process runs the pipeline for every source and returns the results in
// source order. The returned error is non-nil only when the context is
// cancelled before all sources complete.
func (b *BatchProcessor) Process(ctx context.Context, sources []string) ([]Result, error) {
	results := make([]Result, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.batchSize)

	for i, source := range sources {
		g.Go(func() error {
			run := model.NewRunReport(source)
			err := b.factory(source).Execute(gctx, run)
			results[i] = Result{Report: run, Err: err}

			// Cancellation is the only error that propagates through
			// the group: it means the whole batch should stop.
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	b.logger.Info("batch complete",
		"sources", len(sources),
		"batch_size", b.batchSize,
	)
	return results, nil
}
