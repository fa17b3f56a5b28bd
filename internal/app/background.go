package app

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// Task outcomes reported to metrics.
const (
	taskOK     = "ok"
	taskFailed = "failed"
	taskPanic  = "panic"
)

// Background runs detached tasks. A task's error is logged and counted; it is
// never returned to the caller that started it and never retried.
type Background struct {
	logger  *slog.Logger
	metrics *Metrics
	wg      sync.WaitGroup
}

// NewBackground creates a runner. A nil logger discards output.
func NewBackground(logger *slog.Logger, metrics *Metrics) *Background {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Background{logger: logger, metrics: metrics}
}

// Go starts task without waiting for it. The task's context keeps the values
// of ctx but is not canceled when ctx is, so a finished request does not abort
// the work it dispatched.
func (b *Background) Go(ctx context.Context, name string, task func(ctx context.Context) error) {
	taskCtx := context.WithoutCancel(ctx)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer b.recover(taskCtx, name)
		if err := task(taskCtx); err != nil {
			b.metrics.observeTask(name, taskFailed)
			b.logger.ErrorContext(taskCtx, "background task failed", "task", name, "err", err)
			return
		}
		b.metrics.observeTask(name, taskOK)
	}()
}

// Wait blocks until every started task has returned.
func (b *Background) Wait() {
	b.wg.Wait()
}

func (b *Background) recover(ctx context.Context, name string) {
	if r := recover(); r != nil {
		b.metrics.observeTask(name, taskPanic)
		b.logger.ErrorContext(ctx, "background task panic",
			"task", name, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
	}
}
