// Package tasklog wraps log/slog with accumulating child-logger
// attributes, so every component can derive a logger scoped to a task,
// analysis run, or plan without repeating context at each call site.
package tasklog

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps an *slog.Logger and exposes typed With* helpers for the
// attributes the core threads through its components.
type Logger struct {
	base *slog.Logger
}

// New builds a Logger writing JSON lines to w at the given level.
func New(w io.Writer, level slog.Level) *Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{base: slog.New(h)}
}

// Default returns a Logger writing to stderr at info level.
func Default() *Logger {
	return New(os.Stderr, slog.LevelInfo)
}

// With returns a child Logger with the given key/value pairs merged into
// every subsequent record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{base: l.base.With(args...)}
}

// WithTask returns a child Logger scoped to a task ID.
func (l *Logger) WithTask(taskID string) *Logger {
	return l.With("task_id", taskID)
}

// WithAnalysis returns a child Logger scoped to an analysis run.
func (l *Logger) WithAnalysis(analysisID string) *Logger {
	return l.With("analysis_id", analysisID)
}

// WithPlan returns a child Logger scoped to a plan ID.
func (l *Logger) WithPlan(planID string) *Logger {
	return l.With("plan_id", planID)
}

// WithComponent returns a child Logger tagging the emitting component
// (analyzer, scorer, planner, optimizer, monitor, depmanager).
func (l *Logger) WithComponent(name string) *Logger {
	return l.With("component", name)
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.base.DebugContext(ctx, msg, args...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.base.InfoContext(ctx, msg, args...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.base.WarnContext(ctx, msg, args...)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.base.ErrorContext(ctx, msg, args...)
}

// Slog exposes the underlying *slog.Logger for callers that need it
// directly (e.g. to pass to a library expecting one).
func (l *Logger) Slog() *slog.Logger {
	return l.base
}
