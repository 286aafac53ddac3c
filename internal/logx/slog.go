package logx

import "log/slog"

// SlogAdapter implements Logger on top of *slog.Logger.
type SlogAdapter struct {
	l *slog.Logger
}

// NewSlogAdapter wraps l.
func NewSlogAdapter(l *slog.Logger) Logger {
	return &SlogAdapter{l: l}
}

func (s *SlogAdapter) Debug(msg string, fields ...Field) { s.l.Debug(msg, toSlogArgs(fields)...) }
func (s *SlogAdapter) Info(msg string, fields ...Field)  { s.l.Info(msg, toSlogArgs(fields)...) }
func (s *SlogAdapter) Warn(msg string, fields ...Field)  { s.l.Warn(msg, toSlogArgs(fields)...) }
func (s *SlogAdapter) Error(msg string, fields ...Field) { s.l.Error(msg, toSlogArgs(fields)...) }

// With returns a child logger carrying fields on every entry.
func (s *SlogAdapter) With(fields ...Field) Logger {
	return &SlogAdapter{l: s.l.With(toSlogArgs(fields)...)}
}

// Sync is a no-op, slog handlers write synchronously.
func (s *SlogAdapter) Sync() error { return nil }

func toSlogArgs(fields []Field) []any {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, slog.Any(f.Key, f.Value))
	}
	return args
}

type nopLogger struct{}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...Field) {}
func (nopLogger) Info(string, ...Field)  {}
func (nopLogger) Warn(string, ...Field)  {}
func (nopLogger) Error(string, ...Field) {}
func (nopLogger) With(...Field) Logger   { return nopLogger{} }
func (nopLogger) Sync() error            { return nil }

var (
	_ Logger = nopLogger{}
	_ Logger = (*SlogAdapter)(nil)
)
