// Package logger provides the structured logging wrapper used throughout
// the engine, mirroring the teacher repository's pkg/logger.
package logger

import (
	"log/slog"
	"os"

	"github.com/icyhot/recall/internal/config"
)

// Logger wraps the structured logger.
type Logger struct {
	*slog.Logger
}

// New creates a new structured logger based on configuration.
func New(cfg *config.LoggingConfig) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithFields adds fields to the logger context.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{Logger: l.Logger.With(args...)}
}

// WithComponent adds a component field to the logger.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger.With("component", component)}
}

// WithUser adds a user_id field to the logger.
func (l *Logger) WithUser(userID string) *Logger {
	return &Logger{Logger: l.Logger.With("user_id", userID)}
}

// WithCorrelationID adds a correlation_id field to the logger, used to tie
// together the log lines of a single ingest or consolidation run.
func (l *Logger) WithCorrelationID(correlationID string) *Logger {
	return &Logger{Logger: l.Logger.With("correlation_id", correlationID)}
}

// Setup sets up the global default logger.
func Setup(cfg *config.LoggingConfig) *Logger {
	logger := New(cfg)
	slog.SetDefault(logger.Logger)
	return logger
}
