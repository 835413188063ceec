package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/wsfix/internal/models"
)

// FileLogger logs run events to timestamped files in a log directory and
// maintains a latest.log symlink pointing to the most recent run.
// It always records diagnostic and advisory detail, whatever the console shows.
// It is thread-safe and implements Logger.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger in logDir with log level "info".
func NewFileLogger(logDir string) (*FileLogger, error) {
	return NewFileLoggerWithLevel(logDir, "info")
}

// NewFileLoggerWithLevel creates a FileLogger in logDir with the given log level.
// It creates the log directory if it doesn't exist, opens a timestamped
// run log file, and creates/updates the latest.log symlink.
func NewFileLoggerWithLevel(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Generate timestamped filename: run-YYYYMMDD-HHMMSS.log
	timestamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", timestamp))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")

	// Remove existing symlink if it exists
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}

	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	logger := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	logger.writeRunLog("=== wsfix Run Log ===\n")
	logger.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return logger, nil
}

// RunFile returns the path of this run's log file.
func (fl *FileLogger) RunFile() string {
	return fl.runFile
}

// shouldLog checks if a message at the given level should be logged.
func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}

	formatted := fmt.Sprintf("[%s] [%s] %s\n", time.Now().Format("15:04:05"), level, message)
	fl.writeRunLog(formatted)
}

// LogFileResult records one file's outcome followed by its diagnostics and advisories.
func (fl *FileLogger) LogFileResult(result models.FileResult) {
	if !fl.shouldLog(fileResultLevel(result)) {
		return
	}

	ts := time.Now().Format("15:04:05")
	message := fmt.Sprintf("[%s] %s\n", ts, describeFileResult(result))
	for _, line := range detailLines(result) {
		message += fmt.Sprintf("[%s] %s\n", ts, line)
	}

	fl.writeRunLog(message)
}

// LogSummary logs the run summary with final statistics at INFO level.
func (fl *FileLogger) LogSummary(result *models.BatchResult) {
	if result == nil {
		return
	}
	if !fl.shouldLog("info") && result.Passed() {
		return
	}

	timestamp := time.Now().Format("15:04:05")
	changedLabel := "Fixed:       "
	if result.CheckOnly {
		changedLabel = "Need fixing: "
	}

	message := fmt.Sprintf(
		"\n[%s] === RUN SUMMARY ===\n"+
			"[%s] Mode:         %s\n"+
			"[%s] Scanned:      %d\n"+
			"[%s] %s %d\n"+
			"[%s] Unchanged:    %d\n"+
			"[%s] Binary:       %d\n"+
			"[%s] Errors:       %d\n"+
			"[%s] Total time:   %.3fs\n"+
			"[%s] Status:       %s\n"+
			"[%s] Completed at: %s\n",
		timestamp,
		timestamp, modeName(result.CheckOnly),
		timestamp, result.FilesScanned,
		timestamp, changedLabel, result.FilesChanged,
		timestamp, result.FilesUnchanged,
		timestamp, result.FilesBinary,
		timestamp, result.FilesErrored,
		timestamp, result.Duration.Seconds(),
		timestamp, strings.ToUpper(result.Status()),
		timestamp, time.Now().Format(time.RFC3339),
	)
	if totals := formatTotals(result.Totals); totals != "" {
		message += fmt.Sprintf("[%s] Lines:        %s\n", timestamp, totals)
	}

	fl.writeRunLog(message)
}

func modeName(checkOnly bool) string {
	if checkOnly {
		return "check"
	}
	return "fix"
}

// Close flushes and closes the run log file.
// It should be called when the logger is no longer needed.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}

	return nil
}

// writeRunLog is a thread-safe helper to write to the run log file.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		// Flush after each write for real-time logging
		fl.runLog.Sync()
	}
}
