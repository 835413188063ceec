package logger

import "github.com/harrison/wsfix/internal/models"

// MultiLogger fans every call out to each of its loggers in order.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger. Nil loggers are skipped.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

// Add appends a logger.
func (m *MultiLogger) Add(l Logger) {
	if l != nil {
		m.loggers = append(m.loggers, l)
	}
}

func (m *MultiLogger) LogDebug(message string) {
	for _, l := range m.loggers {
		l.LogDebug(message)
	}
}

func (m *MultiLogger) LogInfo(message string) {
	for _, l := range m.loggers {
		l.LogInfo(message)
	}
}

func (m *MultiLogger) LogWarn(message string) {
	for _, l := range m.loggers {
		l.LogWarn(message)
	}
}

func (m *MultiLogger) LogError(message string) {
	for _, l := range m.loggers {
		l.LogError(message)
	}
}

func (m *MultiLogger) LogFileResult(result models.FileResult) {
	for _, l := range m.loggers {
		l.LogFileResult(result)
	}
}

func (m *MultiLogger) LogSummary(result *models.BatchResult) {
	for _, l := range m.loggers {
		l.LogSummary(result)
	}
}
