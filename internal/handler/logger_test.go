package handler

import (
	"strings"
	"sync"

	"pdf-webhook/internal/domain"
)

// MockHandlerLogger records log lines for handler package tests.
type MockHandlerLogger struct {
	mu    sync.Mutex
	lines []string
}

func NewMockHandlerLogger() *MockHandlerLogger {
	return &MockHandlerLogger{}
}

var _ domain.Logger = (*MockHandlerLogger)(nil)

func (l *MockHandlerLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+": "+msg)
}

func (l *MockHandlerLogger) Info(msg string, fields ...interface{}) { l.record("INFO", msg) }
func (l *MockHandlerLogger) Error(msg string, err error, fields ...interface{}) { l.record("ERROR", msg) }
func (l *MockHandlerLogger) Debug(msg string, fields ...interface{}) { l.record("DEBUG", msg) }
func (l *MockHandlerLogger) Warn(msg string, fields ...interface{}) { l.record("WARN", msg) }

func (l *MockHandlerLogger) has(prefix string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
