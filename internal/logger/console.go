// Package logger provides logging implementations for wsfix runs.
//
// The logger package reports per-file outcomes and the run summary. Implementations
// are thread-safe and support various output destinations (console, file, or
// several at once through MultiLogger).
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/wsfix/internal/models"
	"github.com/harrison/wsfix/internal/whitespace"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Logger is the full logging surface used by the command layer. Every
// implementation also satisfies runner.Logger.
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogFileResult(result models.FileResult)
	LogSummary(result *models.BatchResult)
}

// ConsoleLogger logs run progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// It supports log level filtering to control message verbosity.
// Color output is automatically enabled for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	verbose     bool
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// logLevel determines the minimum log level for messages to be output.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// SetVerbose makes LogFileResult print each diagnostic and advisory line.
func (cl *ConsoleLogger) SetVerbose(verbose bool) {
	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	cl.verbose = verbose
}

// isTerminal checks if the writer is a terminal that supports colors.
// Returns false when NO_COLOR is set or the writer is not a TTY.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}

	return "info"
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// logWithLevel logs a message at the specified level if filtering allows it.
// Format: "[HH:MM:SS] [LEVEL] <message>"
func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var formatted string
	if cl.colorOutput {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, colorLevel(level), message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}

	cl.writer.Write([]byte(formatted))
}

// colorLevel returns the level tag wrapped in its ANSI color.
func colorLevel(level string) string {
	switch strings.ToUpper(level) {
	case "TRACE":
		return color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARN":
		return color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	default:
		return level
	}
}

// fileResultLevel returns the level a file result is reported at.
// Clean and binary files only show up at debug.
func fileResultLevel(result models.FileResult) string {
	switch result.Status {
	case models.FileError:
		return "error"
	case models.FileChanged:
		return "info"
	default:
		if len(result.Advisories) > 0 {
			return "info"
		}
		return "debug"
	}
}

// describeFileResult renders the one-line form of a file result.
// Examples:
//
//	"fixed main.go: 3 lines (trailing-whitespace, final-newline)"
//	"would fix main.go: 1 line (line-ending)"
//	"error main.go: write main.go: permission denied"
func describeFileResult(result models.FileResult) string {
	switch result.Status {
	case models.FileChanged:
		verb := "would fix"
		if result.Written {
			verb = "fixed"
		}
		return fmt.Sprintf("%s %s: %s (%s)", verb, result.Path, pluralLines(result.Summary.Lines()), ruleList(result.Diagnostics))
	case models.FileError:
		return fmt.Sprintf("error %s: %v", result.Path, result.Err)
	case models.FileBinary:
		return fmt.Sprintf("skipped %s (binary)", result.Path)
	default:
		return fmt.Sprintf("ok %s", result.Path)
	}
}

func ruleList(diags []whitespace.Diagnostic) string {
	rules := make([]string, len(diags))
	for i, d := range diags {
		rules[i] = d.Rule
	}
	return strings.Join(rules, ", ")
}

func pluralLines(n int) string {
	if n == 1 {
		return "1 line"
	}
	return fmt.Sprintf("%d lines", n)
}

// detailLines returns the indented diagnostic and advisory lines shown in verbose mode.
func detailLines(result models.FileResult) []string {
	var lines []string
	for _, d := range result.Diagnostics {
		lines = append(lines, fmt.Sprintf("  %s:%d: %s [%s]", result.Path, d.Line, d.Message, d.Rule))
	}
	for _, a := range result.Advisories {
		lines = append(lines, fmt.Sprintf("  %s:%d: %s [%s] (advisory)", result.Path, a.Line, a.Message, a.Rule))
	}
	return lines
}

// LogFileResult logs the outcome of one file.
// Errors log at ERROR, fixes at INFO, and clean or binary files at DEBUG.
// In verbose mode each diagnostic and advisory follows on its own line.
func (cl *ConsoleLogger) LogFileResult(result models.FileResult) {
	if cl.writer == nil {
		return
	}

	level := fileResultLevel(result)
	if !cl.shouldLog(level) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	message := describeFileResult(result)

	if cl.colorOutput {
		switch result.Status {
		case models.FileChanged:
			if result.Written {
				message = color.New(color.FgGreen).Sprint(message)
			} else {
				message = color.New(color.FgYellow).Sprint(message)
			}
		case models.FileError:
			message = color.New(color.FgRed).Sprint(message)
		case models.FileBinary:
			message = color.New(color.FgHiBlack).Sprint(message)
		}
	}

	output := fmt.Sprintf("[%s] %s\n", ts, message)
	if cl.verbose {
		for _, line := range detailLines(result) {
			output += fmt.Sprintf("[%s] %s\n", ts, line)
		}
	}

	cl.writer.Write([]byte(output))
}

// LogSummary logs the run summary with file counts at INFO level.
// A failing run's summary is logged even when the level is warn or error.
func (cl *ConsoleLogger) LogSummary(result *models.BatchResult) {
	if cl.writer == nil || result == nil {
		return
	}

	if !cl.shouldLog("info") && result.Passed() {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	changedLabel := "Fixed"
	if result.CheckOnly {
		changedLabel = "Need fixing"
	}
	clean := result.FilesUnchanged + result.FilesBinary

	var output string
	if cl.colorOutput {
		scheme := newColorScheme()
		header := color.New(color.Bold).Sprint("=== Whitespace Summary ===")
		output = fmt.Sprintf("[%s] %s\n", ts, header)
		output += fmt.Sprintf("[%s] Files scanned: %d\n", ts, result.FilesScanned)

		if result.FilesChanged > 0 {
			c := scheme.success
			if result.CheckOnly {
				c = scheme.warn
			}
			output += fmt.Sprintf("[%s] %s\n", ts, c.Sprintf("%s: %d", changedLabel, result.FilesChanged))
		} else {
			output += fmt.Sprintf("[%s] %s: 0\n", ts, changedLabel)
		}
		output += fmt.Sprintf("[%s] Unchanged: %d\n", ts, result.FilesUnchanged)
		output += fmt.Sprintf("[%s] Binary: %d\n", ts, result.FilesBinary)

		if result.FilesErrored > 0 {
			output += fmt.Sprintf("[%s] %s\n", ts, scheme.fail.Sprintf("Errors: %d", result.FilesErrored))
		} else {
			output += fmt.Sprintf("[%s] Errors: 0\n", ts)
		}

		if totals := formatColorizedTotals(result.Totals); totals != "" {
			output += fmt.Sprintf("[%s] Lines: %s\n", ts, totals)
		}
		output += fmt.Sprintf("[%s] Clean: %s\n", ts, renderBar(clean, result.FilesScanned, 10, true))
		output += fmt.Sprintf("[%s] Duration: %s\n", ts, formatDuration(result.Duration))

		if result.Passed() {
			output += fmt.Sprintf("[%s] Status: %s\n", ts, scheme.success.Sprint("PASS"))
		} else {
			output += fmt.Sprintf("[%s] Status: %s\n", ts, scheme.fail.Sprint("FAIL"))
		}

		if errored := result.ErroredFiles(); len(errored) > 0 {
			output += fmt.Sprintf("[%s] %s\n", ts, scheme.fail.Sprint("Failed files:"))
			for _, fr := range errored {
				output += fmt.Sprintf("[%s]   - %s: %v\n", ts, scheme.fail.Sprint(fr.Path), fr.Err)
			}
		}
	} else {
		output = fmt.Sprintf("[%s] === Whitespace Summary ===\n", ts)
		output += fmt.Sprintf("[%s] Files scanned: %d\n", ts, result.FilesScanned)
		output += fmt.Sprintf("[%s] %s: %d\n", ts, changedLabel, result.FilesChanged)
		output += fmt.Sprintf("[%s] Unchanged: %d\n", ts, result.FilesUnchanged)
		output += fmt.Sprintf("[%s] Binary: %d\n", ts, result.FilesBinary)
		output += fmt.Sprintf("[%s] Errors: %d\n", ts, result.FilesErrored)
		if totals := formatTotals(result.Totals); totals != "" {
			output += fmt.Sprintf("[%s] Lines: %s\n", ts, totals)
		}
		output += fmt.Sprintf("[%s] Clean: %s\n", ts, renderBar(clean, result.FilesScanned, 10, false))
		output += fmt.Sprintf("[%s] Duration: %s\n", ts, formatDuration(result.Duration))
		output += fmt.Sprintf("[%s] Status: %s\n", ts, strings.ToUpper(result.Status()))

		if errored := result.ErroredFiles(); len(errored) > 0 {
			output += fmt.Sprintf("[%s] Failed files:\n", ts)
			for _, fr := range errored {
				output += fmt.Sprintf("[%s]   - %s: %v\n", ts, fr.Path, fr.Err)
			}
		}
	}

	cl.writer.Write([]byte(output))
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "250ms", "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		if remainder == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		minutes := remainder / time.Minute
		remainder = remainder % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case d >= time.Minute:
		minutes := d / time.Minute
		remainder := d % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// NoOpLogger is a Logger implementation that discards all log messages.
// Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// LogDebug is a no-op implementation.
func (n *NoOpLogger) LogDebug(message string) {}

// LogInfo is a no-op implementation.
func (n *NoOpLogger) LogInfo(message string) {}

// LogWarn is a no-op implementation.
func (n *NoOpLogger) LogWarn(message string) {}

// LogError is a no-op implementation.
func (n *NoOpLogger) LogError(message string) {}

// LogFileResult is a no-op implementation.
func (n *NoOpLogger) LogFileResult(result models.FileResult) {}

// LogSummary is a no-op implementation.
func (n *NoOpLogger) LogSummary(result *models.BatchResult) {}
