package executor

import (
	"context"
	"runtime"

	"github.com/v-craft/vcgo/queue"
	"github.com/v-craft/vcgo/task"
)

// ScopeExecutor backs a single call into a scoped-spawn API: tasks that
// borrow data living on the caller's stack run here instead of on a
// GlobalExecutor worker, since nothing guarantees a worker thread outlives
// the call. The owning goroutine drains it directly, typically while
// waiting for every task spawned into the scope to finish.
type ScopeExecutor struct {
	queue *queue.ListQueue[task.Runnable]
}

// NewScopeExecutor builds an empty ScopeExecutor.
func NewScopeExecutor() *ScopeExecutor {
	return &ScopeExecutor{queue: queue.NewDefault[task.Runnable]()}
}

// SpawnOnScope schedules fn onto e, to be run by whoever ticks e.
func SpawnOnScope[T any](e *ScopeExecutor, fn func() T) *task.FallibleTask[T] {
	return task.SpawnFallible(e.queue.Push, fn)
}

// TryTick runs at most one pending runnable, reporting whether it found
// one.
func (e *ScopeExecutor) TryTick() bool {
	r, ok := e.queue.Pop()
	if !ok {
		return false
	}
	r()
	return true
}

// IsEmpty reports whether e currently has no queued runnables.
func (e *ScopeExecutor) IsEmpty() bool { return e.queue.IsEmpty() }

// ScopeExecutorTicker drains a ScopeExecutor until told to stop, yielding
// between empty polls rather than busy-spinning. It is the idiomatic stand
// -in for the source's poll_fn-based async tick loop: there's no future to
// suspend, so ticking just means "try, and if nothing's ready, give other
// goroutines a turn."
type ScopeExecutorTicker struct {
	exec *ScopeExecutor
}

// Ticker returns a ticker bound to e.
func (e *ScopeExecutor) Ticker() *ScopeExecutorTicker {
	return &ScopeExecutorTicker{exec: e}
}

// Tick blocks until a runnable is found and run, or ctx is done.
func (t *ScopeExecutorTicker) Tick(ctx context.Context) bool {
	for {
		if t.exec.TryTick() {
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
