package clustergo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with clustergo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithClusters adds a cluster count field to the logger.
func (l *Logger) WithClusters(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("clusters", k),
	}
}

// WithShape adds sample and feature count fields to the logger.
func (l *Logger) WithShape(samples, features int) *Logger {
	return &Logger{
		Logger: l.Logger.With("samples", samples, "features", features),
	}
}

// LogSetup logs the kernel choices made for a fit.
func (l *Logger) LogSetup(ctx context.Context, algorithm, arch string, kernels ...any) {
	attrs := append([]any{"algorithm", algorithm, "arch", arch}, kernels...)
	l.DebugContext(ctx, "kmeans setup", attrs...)
}

// LogFit logs the outcome of a fit.
func (l *Logger) LogFit(ctx context.Context, iterations int, reason string, inertia float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "fit failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "fit completed",
			"iterations", iterations,
			"reason", reason,
			"inertia", inertia,
		)
	}
}
