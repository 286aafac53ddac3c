package logx

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// Logger is the structured logger used across services, workers and brokers.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
	Sync() error
}

// Field is a single key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

func Any(key string, value any) Field { return Field{Key: key, Value: value} }

func String(key, value string) Field { return Field{Key: key, Value: value} }

func Int(key string, value int) Field { return Field{Key: key, Value: value} }

func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }

func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

func Time(key string, value time.Time) Field { return Field{Key: key, Value: value} }

func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }

// Err attaches an error under the "err" key. A nil error is kept as nil.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "err", Value: nil}
	}
	return Field{Key: "err", Value: err.Error()}
}

// ParseLevel maps a textual level (debug, info, warn, error) to slog.Level.
// Unknown values fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewJSON builds a JSON logger writing to w at the given level.
func NewJSON(w io.Writer, level string) Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return NewSlogAdapter(slog.New(h))
}
