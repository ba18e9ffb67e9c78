package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"issue-fetcher/internal/config"
)

// Logger is a leveled key/value logger. Output goes to stderr and, when a
// log path is configured, to a size-rotated file.
type Logger struct {
	slog   *slog.Logger
	closer io.Closer
}

func NewLogger(cfg config.ObservabilityConfig, stderr io.Writer) *Logger {
	if stderr == nil {
		stderr = os.Stderr
	}

	var (
		out    = stderr
		closer io.Closer
	)
	if cfg.LogPath != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogPath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		out = io.MultiWriter(stderr, rotator)
		closer = rotator
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})
	return &Logger{slog: slog.New(handler), closer: closer}
}

// NewNopLogger discards everything.
func NewNopLogger() *Logger {
	return &Logger{slog: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// With returns a logger that adds fields to every record.
func (l *Logger) With(fields ...any) *Logger {
	return &Logger{slog: l.slog.With(fields...), closer: l.closer}
}

func (l *Logger) Debug(msg string, fields ...any) {
	l.slog.Debug(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...any) {
	l.slog.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...any) {
	l.slog.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...any) {
	l.slog.Error(msg, fields...)
}

// Close flushes and closes the rotating file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
