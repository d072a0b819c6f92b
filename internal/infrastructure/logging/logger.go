package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/andrescamacho/tradewars-server/internal/infrastructure/config"
)

// SlogLogger adapts slog to the application's Log(level, message, metadata)
// interface so handlers stay decoupled from the logging backend.
type SlogLogger struct {
	inner *slog.Logger
}

// New builds a logger from the logging config section.
func New(cfg *config.LoggingConfig) *SlogLogger {
	out := os.Stdout
	if cfg.Output == "stderr" {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return &SlogLogger{inner: slog.New(handler)}
}

// Log implements the application logger interface.
func (l *SlogLogger) Log(level, message string, metadata map[string]interface{}) {
	attrs := make([]any, 0, len(metadata)*2)
	for k, v := range metadata {
		attrs = append(attrs, k, v)
	}
	switch strings.ToLower(level) {
	case "debug":
		l.inner.Debug(message, attrs...)
	case "warn", "warning":
		l.inner.Warn(message, attrs...)
	case "error":
		l.inner.Error(message, attrs...)
	default:
		l.inner.Info(message, attrs...)
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
