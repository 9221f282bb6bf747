// Package pipeline runs scraping collaborators in a bounded worker pool and
// hands the combined listings to the enrichment stage. Scraping and
// enrichment are sequential phases; sources only run concurrently with each
// other.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"marquee/internal/listing"
	"marquee/internal/logging"
)

// Source produces raw listings for one venue or listings site.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]listing.Record, error)
}

// FileSource replays listings from a JSON file, the exchange format the
// scraping collaborators write.
type FileSource struct {
	name string
	path string
}

// NewFileSource builds a replay source for a listings JSON file.
func NewFileSource(name, path string) *FileSource {
	return &FileSource{name: name, path: path}
}

// Name returns the source label used in reports and logs.
func (s *FileSource) Name() string { return s.name }

// Fetch loads the file's listings.
func (s *FileSource) Fetch(_ context.Context) ([]listing.Record, error) {
	return listing.ReadFile(s.path)
}

// SourceResult is one source's outcome within a run.
type SourceResult struct {
	Source   string
	Records  int
	Duration time.Duration
	Err      error
}

// Report summarizes the scraping phase of one run.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []SourceResult
}

// Failures counts sources that returned an error.
func (r *Report) Failures() int {
	failures := 0
	for _, result := range r.Results {
		if result.Err != nil {
			failures++
		}
	}
	return failures
}

// Runner executes sources with bounded concurrency and a per-source timeout.
type Runner struct {
	sources []Source
	workers int
	timeout time.Duration
	logger  *slog.Logger
}

// NewRunner builds a runner. workers <= 0 means unbounded; timeout <= 0
// means no per-source deadline.
func NewRunner(sources []Source, workers int, timeout time.Duration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		sources: sources,
		workers: workers,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Run fetches every source and returns the combined listings in source
// order. A failing source contributes zero records and is recorded in the
// report; it never fails the run.
func (r *Runner) Run(ctx context.Context) (*Report, []listing.Record) {
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Results:   make([]SourceResult, len(r.sources)),
	}
	collected := make([][]listing.Record, len(r.sources))

	ctx = logging.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, r.logger)

	group, groupCtx := errgroup.WithContext(ctx)
	if r.workers > 0 {
		group.SetLimit(r.workers)
	}

	var mu sync.Mutex
	for i, source := range r.sources {
		i, source := i, source
		group.Go(func() error {
			sourceCtx := groupCtx
			if r.timeout > 0 {
				var cancel context.CancelFunc
				sourceCtx, cancel = context.WithTimeout(groupCtx, r.timeout)
				defer cancel()
			}

			start := time.Now()
			records, err := source.Fetch(sourceCtx)
			result := SourceResult{
				Source:   source.Name(),
				Records:  len(records),
				Duration: time.Since(start),
				Err:      err,
			}
			if err != nil {
				logger.Warn("source failed",
					logging.String(logging.FieldSource, source.Name()),
					logging.Error(err))
			} else {
				logger.Info("source complete",
					logging.String(logging.FieldSource, source.Name()),
					logging.Int("records", len(records)),
					logging.Duration("duration", result.Duration))
			}

			mu.Lock()
			report.Results[i] = result
			collected[i] = records
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	report.FinishedAt = time.Now()
	var combined []listing.Record
	for _, records := range collected {
		combined = append(combined, records...)
	}
	return report, combined
}
