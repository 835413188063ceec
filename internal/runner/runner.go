// Package runner applies the whitespace fixer to a list of files.
//
// The Runner reads each file, hands its bytes to whitespace.Analyze, writes the
// corrected content back through an atomic replace unless the run is check-only,
// and folds the per-file results into a models.BatchResult in input order.
// Failures are recorded per file; Run always returns a result.
package runner

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/harrison/wsfix/internal/filelock"
	"github.com/harrison/wsfix/internal/models"
	"github.com/harrison/wsfix/internal/whitespace"
)

// FileSystem is the I/O boundary of the runner.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}

// OSFileSystem reads with os.ReadFile and writes with filelock.AtomicWrite.
type OSFileSystem struct{}

// ReadFile reads the whole file at path.
func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile atomically replaces the file at path.
func (OSFileSystem) WriteFile(path string, data []byte) error {
	return filelock.AtomicWrite(path, data)
}

// Logger receives file results in input order and the final summary.
type Logger interface {
	LogFileResult(result models.FileResult)
	LogSummary(result *models.BatchResult)
}

type nopLogger struct{}

func (nopLogger) LogFileResult(models.FileResult) {}
func (nopLogger) LogSummary(*models.BatchResult)  {}

// Runner processes batches of files with fixed options.
type Runner struct {
	options     whitespace.Options
	concurrency int
	fs          FileSystem
	logger      Logger
}

// New creates a Runner. A concurrency of 0 or 1 processes files one at a time;
// higher values bound the number of files in flight. A nil logger discards output.
func New(options whitespace.Options, concurrency int, logger Logger) *Runner {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Runner{
		options:     options,
		concurrency: concurrency,
		fs:          OSFileSystem{},
		logger:      logger,
	}
}

// WithFileSystem replaces the I/O boundary, typically with a fake in tests.
func (r *Runner) WithFileSystem(fs FileSystem) *Runner {
	r.fs = fs
	return r
}

// Options returns the options the runner applies to every file.
func (r *Runner) Options() whitespace.Options {
	return r.options
}

// Run processes paths and returns the aggregate result.
//
// Cancelling ctx stops scheduling new files. A file whose read-analyze-write
// sequence has started always finishes, so no write is ever torn. Files that were
// never scheduled are recorded as cancelled errors.
func (r *Runner) Run(ctx context.Context, paths []string) *models.BatchResult {
	start := time.Now()

	// One slot per path so the fold below sees input order regardless of
	// which worker finished first
	results := make([]models.FileResult, len(paths))

	if r.concurrency <= 1 {
		for i, path := range paths {
			if err := ctx.Err(); err != nil {
				results[i] = cancelled(path, err)
				continue
			}
			results[i] = r.processFile(path)
		}
	} else {
		r.runParallel(ctx, paths, results)
	}

	batch := models.NewBatchResult(r.options.CheckOnly)
	for _, fr := range results {
		batch.Accumulate(fr)
		r.logger.LogFileResult(fr)
	}
	batch.Finalize(time.Since(start))
	r.logger.LogSummary(batch)

	return batch
}

// runParallel fills results using at most r.concurrency workers.
func (r *Runner) runParallel(ctx context.Context, paths []string, results []models.FileResult) {
	semaphore := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for i, path := range paths {
		// Check context before blocking on the semaphore
		if err := ctx.Err(); err != nil {
			results[i] = cancelled(path, err)
			continue
		}

		select {
		case <-ctx.Done():
			results[i] = cancelled(path, ctx.Err())
			continue
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-semaphore }()
			results[i] = r.processFile(path)
		}(i, path)
	}

	wg.Wait()
}

// processFile runs one file's read, analyze and write sequence.
// The file content does not outlive this call.
func (r *Runner) processFile(path string) models.FileResult {
	data, err := r.fs.ReadFile(path)
	if err != nil {
		return models.FileResult{
			Path:   path,
			Status: models.FileError,
			Err:    &FileError{Kind: KindRead, Path: path, Err: err},
		}
	}

	outcome := whitespace.Analyze(data, r.options)

	fr := models.FileResult{
		Path:        path,
		Summary:     outcome.Summary,
		Diagnostics: outcome.Diagnostics,
		Advisories:  outcome.Advisories,
	}

	switch outcome.Kind {
	case whitespace.Binary:
		fr.Status = models.FileBinary
	case whitespace.Unchanged:
		fr.Status = models.FileUnchanged
	case whitespace.Changed:
		if r.options.CheckOnly {
			fr.Status = models.FileChanged
			break
		}
		if err := r.fs.WriteFile(path, outcome.Content); err != nil {
			fr.Status = models.FileError
			fr.Err = &FileError{Kind: KindWrite, Path: path, Err: err}
			break
		}
		fr.Status = models.FileChanged
		fr.Written = true
	}

	return fr
}

// cancelled records a file the run never got to.
func cancelled(path string, err error) models.FileResult {
	return models.FileResult{
		Path:   path,
		Status: models.FileError,
		Err:    &FileError{Kind: KindCancelled, Path: path, Err: err},
	}
}
