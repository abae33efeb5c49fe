package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/quakeline/nordic-etl/internal/domain"
	"github.com/quakeline/nordic-etl/internal/observability"
)

// BatchExtractor reads up to batchSize bulletin files from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.SourceFile, error)
}

// EventAssembler turns one bulletin file into an event.
type EventAssembler interface {
	AssembleFile(file domain.SourceFile) (domain.Event, error)
}

// BatchLoader writes multiple events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.Event) error
}

// Pipeline orchestrates the extract-assemble-load loop.
type Pipeline struct {
	extractor BatchExtractor
	assembler EventAssembler
	loader    BatchLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	batchSize int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, a EventAssembler, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor: e,
		assembler: a,
		loader:    l,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
	}
}

// CheckReadiness returns nil if the pipeline has processed at least one file,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any files yet")
	}
	return nil
}

// Run executes the batch ETL loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	// Keeps retry storms short while avoiding tight loops during sink outages.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processBatch runs one extract-assemble-load cycle. Returns false if the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	start := time.Now()

	files, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	if len(files) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.FilesConsumed.Add(float64(len(files)))
	p.metrics.BatchSize.Observe(float64(len(files)))
	*backoff = 200 * time.Millisecond

	loaded, ok := p.assembleAndLoad(ctx, files, backoff, maxBackoff)
	if !ok {
		return false
	}

	if loaded > 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}
	return true
}

// assembleAndLoad assembles each file in the batch, loads the successes,
// and commits the files. Returns the number of successfully loaded events and
// false if the pipeline should stop.
//
// Files that fail assembly are committed anyway: a malformed bulletin never
// assembles, and leaving it in the spool would re-fail every cycle.
func (p *Pipeline) assembleAndLoad(ctx context.Context, files []domain.SourceFile, backoff *time.Duration, maxBackoff time.Duration) (int, bool) {
	events := make([]domain.Event, 0, len(files))
	assembled := make([]domain.SourceFile, 0, len(files))

	for _, file := range files {
		ev, err := p.assembler.AssembleFile(file)
		if err != nil {
			p.logger.Warn("assemble failed, skipping file",
				"error", err,
				"file", file.Name,
			)
			p.metrics.AssembleErrors.Inc()
			p.commitFile(ctx, file)
			continue
		}
		events = append(events, ev)
		assembled = append(assembled, file)
	}

	if len(events) == 0 {
		return 0, true
	}

	if err := p.loader.LoadBatch(ctx, events); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(events))
		return 0, p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	p.metrics.EventsProduced.Add(float64(len(events)))

	for _, file := range assembled {
		p.commitFile(ctx, file)
	}

	return len(events), true
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitFile acknowledges the file if a commit function is available.
func (p *Pipeline) commitFile(ctx context.Context, file domain.SourceFile) {
	if file.Commit == nil {
		return
	}
	if err := file.Commit(ctx); err != nil {
		p.metrics.CommitErrors.Inc()
		p.logger.Warn("commit file failed", "error", err, "file", file.Name)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
