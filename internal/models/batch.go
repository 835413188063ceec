package models

import (
	"time"

	"github.com/harrison/wsfix/internal/whitespace"
)

// File status constants
const (
	FileUnchanged = "unchanged" // Content already correct
	FileChanged   = "changed"   // Content needed (and unless check-only, received) a fix
	FileBinary    = "binary"    // Skipped, contains a NUL byte
	FileError     = "error"     // Read or write failed
)

// Run status constants
const (
	StatusPass = "pass"
	StatusFail = "fail"
)

// FileResult is the outcome of processing one path.
type FileResult struct {
	Path        string                  // Path as given to the runner
	Status      string                  // unchanged, changed, binary, error
	Summary     whitespace.Summary      // Rules that fired (changed files only)
	Diagnostics []whitespace.Diagnostic // One entry per rule that fired
	Advisories  []whitespace.Diagnostic // Findings that do not change content
	Written     bool                    // Corrected content was written back
	Err         error                   // Read, write or cancellation error
}

// BatchResult aggregates FileResults in input order.
// Build it with Accumulate and Finalize; treat it as read-only afterwards.
type BatchResult struct {
	FilesScanned   int
	FilesChanged   int
	FilesUnchanged int
	FilesBinary    int
	FilesErrored   int
	AnyChanges     bool
	CheckOnly      bool
	Totals         whitespace.Summary
	FirstError     error
	Files          []FileResult
	Duration       time.Duration
}

// NewBatchResult returns an empty result for a run with the given mode.
func NewBatchResult(checkOnly bool) *BatchResult {
	return &BatchResult{CheckOnly: checkOnly}
}

// Accumulate folds one file's result into the batch.
func (b *BatchResult) Accumulate(fr FileResult) {
	b.FilesScanned++
	b.Files = append(b.Files, fr)

	switch fr.Status {
	case FileChanged:
		b.FilesChanged++
		b.AnyChanges = true
		b.Totals = b.Totals.Add(fr.Summary)
	case FileBinary:
		b.FilesBinary++
	case FileError:
		b.FilesErrored++
		// A failed write still means the file needed a change
		if !fr.Summary.IsZero() {
			b.AnyChanges = true
		}
		if b.FirstError == nil {
			b.FirstError = fr.Err
		}
	default:
		b.FilesUnchanged++
	}
}

// Finalize records the run duration.
func (b *BatchResult) Finalize(duration time.Duration) {
	b.Duration = duration
}

// Status returns StatusFail when any file errored, or when a check-only run
// found pending changes. Otherwise it returns StatusPass.
func (b *BatchResult) Status() string {
	if b.FilesErrored > 0 {
		return StatusFail
	}
	if b.CheckOnly && b.AnyChanges {
		return StatusFail
	}
	return StatusPass
}

// Passed reports whether Status is StatusPass.
func (b *BatchResult) Passed() bool {
	return b.Status() == StatusPass
}

// ErroredFiles returns the results whose status is FileError.
func (b *BatchResult) ErroredFiles() []FileResult {
	var out []FileResult
	for _, fr := range b.Files {
		if fr.Status == FileError {
			out = append(out, fr)
		}
	}
	return out
}

// ChangedFiles returns the results whose status is FileChanged.
func (b *BatchResult) ChangedFiles() []FileResult {
	var out []FileResult
	for _, fr := range b.Files {
		if fr.Status == FileChanged {
			out = append(out, fr)
		}
	}
	return out
}
