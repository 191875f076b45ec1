// Package log is the structured logging layer of olsinfer.
//
// Callers log through the Logger interface with slog-style alternating
// key/value fields. The backend is zerolog (ZerologLogger); TestLogger points
// the same backend at a buffer for assertions. Field names come from the
// constants in attributes.go so that the fitting core, the CLI and the
// snapshot code emit records that can be filtered together:
//
//	logger := log.GetLogger().With(log.ModelNameKey, "Regression")
//	logger.Info("Fit completed",
//		log.SamplesKey, 100,
//		log.RankKey, 3,
//		log.ConditionKey, 41.5,
//	)
package log

import (
	"context"
)

// Logger is the logging surface used throughout olsinfer.
//
// Warn and Error treat a leading error value specially: its message goes under
// ErrAttrKey, together with its stacktrace and structured detail when present.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)

	// With returns a child logger that adds fields to every record.
	With(fields ...any) Logger

	// Enabled reports whether a record at level would be written. Use it to
	// skip building expensive fields such as singular value dumps.
	Enabled(ctx context.Context, level Level) bool
}

// Level uses the numeric values of slog.Level.
type Level int

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider hands out loggers that share one sink and level.
type LoggerProvider interface {
	GetLogger() Logger
	GetLoggerWithName(name string) Logger
	SetLevel(level Level)
}
