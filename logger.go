package tantivy

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with indexing-specific helpers.
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
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// LogSegmentFlush logs the flush of one worker's segment.
func (l *Logger) LogSegmentFlush(ctx context.Context, workerID, numTerms int, docCount uint32) {
	l.DebugContext(ctx, "segment flushed",
		"worker", workerID,
		"terms", numTerms,
		"docs", docCount,
	)
}

// LogCommit logs the completion of a commit.
func (l *Logger) LogCommit(ctx context.Context, numSegments int, docCount uint32, err error) {
	if err != nil {
		l.ErrorContext(ctx, "commit failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "commit completed",
			"segments", numSegments,
			"docs", docCount,
		)
	}
}
