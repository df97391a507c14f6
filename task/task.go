package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrCancelled is returned by Wait when the task was canceled before it ever
// started running.
var ErrCancelled = errors.New("task: canceled before it started")

// Task is a handle to a unit of work scheduled via Spawn. It resembles a
// thread's join handle: Wait blocks for the result, Cancel requests the task
// not run if it hasn't started yet, and Detach (a no-op in this adaptation:
// the task runs to completion regardless of whether anyone waits on it, the
// same guarantee spec.md's task pool makes) lets the caller stop tracking it.
type Task[T any] struct {
	mu        sync.Mutex
	started   bool
	cancelled bool

	done     chan struct{}
	result   T
	panicVal any
}

// Spawn builds a Task around fn and hands its Runnable to schedule. fn does
// not run until whatever executor schedule delivers it to actually picks it
// up; Spawn itself never blocks and never starts a goroutine on its own.
func Spawn[T any](schedule Spawner, fn func() T) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}

	schedule(Runnable(func() {
		t.mu.Lock()
		if t.cancelled {
			t.mu.Unlock()
			close(t.done)
			return
		}
		t.started = true
		t.mu.Unlock()

		defer close(t.done)
		defer func() {
			if r := recover(); r != nil {
				t.panicVal = r
			}
		}()
		t.result = fn()
	}))

	return t
}

// Done reports a channel that closes once the task has run to completion,
// been skipped via Cancel, or panicked.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes or ctx is done, whichever comes
// first. If fn panicked, Wait re-raises the same panic value rather than
// returning an error, matching how a panic inside a spawned task is meant
// to surface to whoever is waiting on it.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		if t.panicVal != nil {
			panic(t.panicVal)
		}
		t.mu.Lock()
		skipped := t.cancelled && !t.started
		t.mu.Unlock()
		if skipped {
			var zero T
			return zero, ErrCancelled
		}
		return t.result, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Cancel marks the task as canceled. If it hasn't started running yet, its
// body is skipped entirely when an executor eventually gets to it; if it has
// already started, Cancel has no effect — Go offers no way to preempt a
// running goroutine mid-closure.
func (t *Task[T]) Cancel() {
	t.mu.Lock()
	if !t.started {
		t.cancelled = true
	}
	t.mu.Unlock()
}

// Detach releases the caller's interest in the result. It exists only to
// mirror the source API's Task::detach — the task already runs to
// completion whether or not Detach is ever called.
func (t *Task[T]) Detach() {}

// FallibleTask wraps a Task for callers that want to distinguish
// "canceled before it ran" from both success and panic without treating
// cancellation itself as something to propagate further.
type FallibleTask[T any] struct {
	inner *Task[T]
}

// SpawnFallible is Spawn for scopes: the caller gets Wait's success/canceled
// distinction without a dedicated error type for the canceled case.
func SpawnFallible[T any](schedule Spawner, fn func() T) *FallibleTask[T] {
	return &FallibleTask[T]{inner: Spawn(schedule, fn)}
}

// Done reports a channel that closes once the task is finished.
func (t *FallibleTask[T]) Done() <-chan struct{} { return t.inner.Done() }

// Wait blocks for the task's result. ok is false when the task was canceled
// before it started, or when ctx is done before the task finishes; a panic
// still propagates by re-raising, same as Task.Wait, so a scope draining a batch of FallibleTasks sees the
// original panic rather than a swallowed error.
func (t *FallibleTask[T]) Wait(ctx context.Context) (value T, ok bool) {
	v, err := t.inner.Wait(ctx)
	if err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// Cancel forwards to the wrapped Task's Cancel.
func (t *FallibleTask[T]) Cancel() { t.inner.Cancel() }

func (t *FallibleTask[T]) String() string {
	return fmt.Sprintf("FallibleTask(%T)", *new(T))
}
