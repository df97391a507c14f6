package executor

import (
	"context"
	"runtime"

	"github.com/v-craft/vcgo/queue"
	"github.com/v-craft/vcgo/task"
)

// LocalExecutor runs runnables on whichever goroutine calls Tick/Run. It
// has no worker pool and no stealing: it exists for work that must stay on
// the calling goroutine. The source keeps LocalExecutor and GlobalExecutor
// structurally distinct because a !Send future may only ever run on the
// thread it was spawned from; Go's scheduler makes no such distinction
// between goroutines, so here the separation is purely about which queue
// a caller chooses to drain, not about a safety guarantee the type system
// enforces.
type LocalExecutor struct {
	queue *queue.ListQueue[task.Runnable]
}

// NewLocalExecutor builds an empty LocalExecutor.
func NewLocalExecutor() *LocalExecutor {
	return &LocalExecutor{queue: queue.NewDefault[task.Runnable]()}
}

// SpawnLocal schedules fn onto e. fn only runs once something calls
// TryTick, Tick, or Run on e.
func SpawnLocal[T any](e *LocalExecutor, fn func() T) *task.Task[T] {
	return task.Spawn(e.queue.Push, fn)
}

// TryTick runs at most one pending runnable, reporting whether it found
// one.
func (e *LocalExecutor) TryTick() bool {
	r, ok := e.queue.Pop()
	if !ok {
		return false
	}
	r()
	return true
}

// Tick blocks until a runnable is found and run, or ctx is done.
func (e *LocalExecutor) Tick(ctx context.Context) bool {
	for {
		if e.TryTick() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		default:
			runtime.Gosched()
		}
	}
}

// Run drains e until ctx is done.
func (e *LocalExecutor) Run(ctx context.Context) {
	for e.Tick(ctx) {
	}
}

// IsEmpty reports whether e currently has no queued runnables.
func (e *LocalExecutor) IsEmpty() bool { return e.queue.IsEmpty() }
