package logger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harrison/wsfix/internal/models"
	"github.com/harrison/wsfix/internal/whitespace"
)

// TestLogDirectoryCreation verifies the log directory is created on initialization
func TestLogDirectoryCreation(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "nested", "logs")

	logger, err := NewFileLogger(logDir)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Expected log directory %s to exist, but it doesn't", logDir)
	}
}

// TestPerRunLogFile verifies a timestamped log file is created per run
func TestPerRunLogFile(t *testing.T) {
	tmpDir := t.TempDir()

	logger, err := NewFileLogger(tmpDir)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer logger.Close()

	base := filepath.Base(logger.RunFile())
	if !strings.HasPrefix(base, "run-") || !strings.HasSuffix(base, ".log") {
		t.Errorf("unexpected run log name %q", base)
	}
	if _, err := os.Stat(logger.RunFile()); err != nil {
		t.Errorf("run log missing: %v", err)
	}
}

// TestLatestSymlink verifies latest.log points at the current run log
func TestLatestSymlink(t *testing.T) {
	tmpDir := t.TempDir()

	logger, err := NewFileLogger(tmpDir)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer logger.Close()

	target, err := os.Readlink(filepath.Join(tmpDir, "latest.log"))
	if err != nil {
		t.Fatalf("Readlink() error = %v", err)
	}
	if target != filepath.Base(logger.RunFile()) {
		t.Errorf("latest.log -> %q, want %q", target, filepath.Base(logger.RunFile()))
	}
}

// TestSymlinkUpdate verifies a new run replaces the latest.log symlink
func TestSymlinkUpdate(t *testing.T) {
	tmpDir := t.TempDir()

	first, err := NewFileLogger(tmpDir)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	first.Close()

	// Run logs are named to the second
	time.Sleep(1100 * time.Millisecond)

	second, err := NewFileLogger(tmpDir)
	if err != nil {
		t.Fatalf("second NewFileLogger() error = %v", err)
	}
	defer second.Close()

	target, err := os.Readlink(filepath.Join(tmpDir, "latest.log"))
	if err != nil {
		t.Fatalf("Readlink() error = %v", err)
	}
	if target != filepath.Base(second.RunFile()) {
		t.Errorf("latest.log -> %q, want %q", target, filepath.Base(second.RunFile()))
	}
	if first.RunFile() == second.RunFile() {
		t.Error("expected distinct run log files")
	}
}

// TestFileLogFileResult verifies results are written with full detail
func TestFileLogFileResult(t *testing.T) {
	tmpDir := t.TempDir()

	logger, err := NewFileLogger(tmpDir)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	logger.LogFileResult(models.FileResult{
		Path:    "a.txt",
		Status:  models.FileChanged,
		Written: true,
		Summary: whitespace.Summary{LineEndings: 2},
		Diagnostics: []whitespace.Diagnostic{
			{Rule: whitespace.RuleLineEnding, Line: 1, Count: 2, Message: "file has CRLF but LF expected"},
		},
	})
	logger.LogFileResult(models.FileResult{
		Path:   "b.txt",
		Status: models.FileError,
		Err:    errors.New("read b.txt: permission denied"),
	})
	logger.LogFileResult(models.FileResult{Path: "c.txt", Status: models.FileUnchanged})
	logger.Close()

	output := readRunLog(t, tmpDir)
	for _, want := range []string{
		"=== wsfix Run Log ===",
		"fixed a.txt: 2 lines (line-ending)",
		"  a.txt:1: file has CRLF but LF expected [line-ending]",
		"error b.txt: read b.txt: permission denied",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("run log missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "c.txt") {
		t.Errorf("clean file logged at info level:\n%s", output)
	}
}

// TestFileLogSummary verifies the summary block
func TestFileLogSummary(t *testing.T) {
	tmpDir := t.TempDir()

	logger, err := NewFileLogger(tmpDir)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	batch := models.NewBatchResult(true)
	batch.Accumulate(models.FileResult{Path: "a.txt", Status: models.FileChanged, Summary: whitespace.Summary{BlankLinesRemoved: 3}})
	batch.Accumulate(models.FileResult{Path: "b.txt", Status: models.FileUnchanged})
	batch.Finalize(2 * time.Second)

	logger.LogSummary(batch)
	logger.Close()

	output := readRunLog(t, tmpDir)
	for _, want := range []string{
		"=== RUN SUMMARY ===",
		"Mode:         check",
		"Scanned:      2",
		"Need fixing:  1",
		"Unchanged:    1",
		"Total time:   2.000s",
		"Status:       FAIL",
		"Lines:        blank: 3",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("summary missing %q:\n%s", want, output)
		}
	}
}

// TestCloseFlushesLogs verifies content is on disk after Close
func TestCloseFlushesLogs(t *testing.T) {
	tmpDir := t.TempDir()

	logger, err := NewFileLogger(tmpDir)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	logger.LogInfo("flushed message")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if !strings.Contains(readRunLog(t, tmpDir), "flushed message") {
		t.Error("message not flushed to disk")
	}
}

// TestConcurrentLogWrites verifies concurrent writes are all recorded
func TestConcurrentLogWrites(t *testing.T) {
	tmpDir := t.TempDir()

	logger, err := NewFileLogger(tmpDir)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			logger.LogInfo(fmt.Sprintf("message %d", n))
		}(i)
	}
	wg.Wait()
	logger.Close()

	output := readRunLog(t, tmpDir)
	for i := 0; i < 25; i++ {
		if !strings.Contains(output, fmt.Sprintf("message %d\n", i)) {
			t.Errorf("missing message %d", i)
		}
	}
}

// TestNewFileLoggerInvalidPath verifies an unusable directory is reported
func TestNewFileLoggerInvalidPath(t *testing.T) {
	tmpDir := t.TempDir()
	blocker := filepath.Join(tmpDir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileLogger(filepath.Join(blocker, "logs")); err == nil {
		t.Error("expected error when log dir is below a regular file")
	}
}

// TestCloseTwice verifies Close is idempotent
func TestCloseTwice(t *testing.T) {
	logger, err := NewFileLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	// Writes after Close are dropped
	logger.LogInfo("after close")
}

// readRunLog reads the run log through the latest.log symlink
func readRunLog(t *testing.T, tmpDir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(tmpDir, "latest.log"))
	if err != nil {
		t.Fatalf("failed to read run log: %v", err)
	}
	return string(data)
}
