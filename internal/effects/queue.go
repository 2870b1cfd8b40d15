// Package effects holds side effects until the unit of work that produced
// them has committed.
package effects

import (
	"context"
	"log/slog"
)

// Effect is a best-effort action such as sending an email or unlinking a
// stored file.
type Effect func(ctx context.Context) error

type entry struct {
	name string
	fn   Effect
}

// Queue is filled while a transaction runs and flushed after it commits.
// A Queue is not safe for concurrent use; each request owns its own.
type Queue struct {
	entries []entry
}

func (q *Queue) Add(name string, fn Effect) {
	if fn == nil {
		return
	}
	q.entries = append(q.entries, entry{name: name, fn: fn})
}

func (q *Queue) Len() int {
	return len(q.entries)
}

// Discard drops every queued effect. Used when the transaction rolled back.
func (q *Queue) Discard() {
	q.entries = nil
}

// Flush runs the queued effects in order. Failures and panics are logged
// and never returned. The queue is empty afterwards.
func (q *Queue) Flush(ctx context.Context, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	entries := q.entries
	q.entries = nil

	for _, e := range entries {
		run(ctx, logger, e)
	}
}

func run(ctx context.Context, logger *slog.Logger, e entry) {
	defer func() {
		if p := recover(); p != nil {
			logger.Warn("side effect panicked", slog.String("effect", e.name), slog.Any("panic", p))
		}
	}()
	if err := e.fn(ctx); err != nil {
		logger.Warn("side effect failed", slog.String("effect", e.name), slog.String("error", err.Error()))
	}
}
