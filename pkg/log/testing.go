package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// lockedBuffer serializes zerolog writes coming from several goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf *bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) snapshot() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *lockedBuffer) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// TestLogger is the zerolog backend pointed at an in-memory buffer.
//
// Records are the same JSON lines the production logger emits, so tests see
// field names and value encodings exactly as a log pipeline would. Loggers
// derived with With share the buffer.
type TestLogger struct {
	*ZerologLogger
	sink *lockedBuffer
}

// NewTestLogger returns a capturing logger and the buffer it writes to.
// Read the buffer only after logging goroutines have finished.
//
//	logger, _ := log.NewTestLogger(log.LevelDebug)
//	reg, _ := linear.NewRegression(X, y, linear.WithLogger(logger))
//	reg.Fit()
//	logger.ContainsField(log.RankKey, 3.0)
func NewTestLogger(level Level) (*TestLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	sink := &lockedBuffer{buf: buf}
	return &TestLogger{
		ZerologLogger: NewZerologLogger(sink, level),
		sink:          sink,
	}, buf
}

// GetLogEntries decodes every captured JSON line.
// JSON numbers come back as float64.
func (t *TestLogger) GetLogEntries() ([]map[string]interface{}, error) {
	var entries []map[string]interface{}
	for _, line := range strings.Split(t.sink.snapshot(), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ContainsMessage reports whether any record's message contains msg.
func (t *TestLogger) ContainsMessage(msg string) bool {
	entries, err := t.GetLogEntries()
	if err != nil {
		return false
	}
	for _, e := range entries {
		if m, ok := e[zerolog.MessageFieldName].(string); ok && strings.Contains(m, msg) {
			return true
		}
	}
	return false
}

// ContainsField reports whether any record carries key with exactly value.
func (t *TestLogger) ContainsField(key string, value interface{}) bool {
	entries, err := t.GetLogEntries()
	if err != nil {
		return false
	}
	for _, e := range entries {
		if v, ok := e[key]; ok && v == value {
			return true
		}
	}
	return false
}

// Clear drops everything captured so far.
func (t *TestLogger) Clear() {
	t.sink.reset()
}

// TestLoggerProvider hands out loggers that all capture into one buffer.
type TestLoggerProvider struct {
	sink *lockedBuffer
	root *TestLogger
}

// NewTestLoggerProvider creates a provider and returns its shared buffer.
func NewTestLoggerProvider(level Level) (*TestLoggerProvider, *bytes.Buffer) {
	root, buf := NewTestLogger(level)
	return &TestLoggerProvider{sink: root.sink, root: root}, buf
}

// GetLogger implements LoggerProvider.
func (p *TestLoggerProvider) GetLogger() Logger {
	return p.root
}

// GetLoggerWithName implements LoggerProvider.
func (p *TestLoggerProvider) GetLoggerWithName(name string) Logger {
	return p.root.With(ComponentKey, name)
}

// SetLevel implements LoggerProvider. Loggers handed out earlier keep their level.
func (p *TestLoggerProvider) SetLevel(level Level) {
	p.root = &TestLogger{ZerologLogger: NewZerologLogger(p.sink, level), sink: p.sink}
}

// Logger returns the provider's root capturing logger.
func (p *TestLoggerProvider) Logger() *TestLogger {
	return p.root
}
