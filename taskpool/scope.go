package taskpool

import (
	"context"
	"sync"

	"github.com/v-craft/vcgo/executor"
	"github.com/v-craft/vcgo/queue"
	"github.com/v-craft/vcgo/task"
)

// Scope is a borrow-checked handle (in spirit — Go has no lifetimes, so the
// discipline is enforced at runtime instead, see ScopeWithExecutor) giving
// three spawn flavors, all of whose completions are awaited before
// ScopeWithExecutor returns. Mirrors the source's Scope<'scope, 'env, T>.
type Scope[T any] struct {
	global   *executor.GlobalExecutor
	external *executor.ScopeExecutor
	scope    *executor.ScopeExecutor
	spawned  *queue.ListQueue[*task.FallibleTask[T]]
}

// Spawn schedules fn onto the pool's GlobalExecutor — the most efficient
// option, since it can run on any idle worker, but fn must be safe to run
// on a goroutine other than the one that called Scope.
func (s *Scope[T]) Spawn(fn func() T) {
	s.spawned.Push(executor.SpawnFallible(s.global, fn))
}

// SpawnOnScope schedules fn onto the scope's own ScopeExecutor, which the
// scope itself ticks while waiting for results — fn runs on the driver
// goroutine ScopeWithExecutor starts for that executor, not on the goroutine
// that called Scope.
func (s *Scope[T]) SpawnOnScope(fn func() T) {
	s.spawned.Push(executor.SpawnOnScope(s.scope, fn))
}

// SpawnOnExternal schedules fn onto an externally supplied ScopeExecutor,
// typically one owned by a different goroutine (e.g. the pool's
// MainScopeExecutor). The scope waits for fn to finish but does not tick
// that executor itself — whatever goroutine owns it must keep ticking it.
func (s *Scope[T]) SpawnOnExternal(fn func() T) {
	s.spawned.Push(executor.SpawnOnScope(s.external, fn))
}

// cancelRemaining drains whatever is still queued and cancels each one,
// the Go stand-in for the source's Scope::drop. A task that has already
// started can't be preempted — same documented limitation as Task.Cancel.
func (s *Scope[T]) cancelRemaining() {
	for {
		t, ok := s.spawned.Pop()
		if !ok {
			return
		}
		t.Cancel()
	}
}

// Scope runs fn with a fresh Scope and blocks until every task spawned
// through it has completed, returning their results in spawn order
// (spec.md §4.8); tasks canceled before they ran contribute no result. A
// panic inside any spawned task re-panics here with the same value, after
// every task still queued in the scope has been canceled — matching
// "scope's Drop cancels outstanding tasks in case of panic." A task that has
// already started running when the panic surfaces is not waited for and may
// still be running when Scope re-panics.
func Scope[T any](p *TaskPool, fn func(s *Scope[T])) []T {
	return ScopeWithExecutor[T](p, true, nil, fn)
}

// ScopeWithExecutor is Scope, but lets the caller nominate a different
// ScopeExecutor as the SpawnOnExternal target and suppress ticking the
// global executor when every task uses SpawnOnScope/SpawnOnExternal
// (spec.md §4.7's scope_with_executor). A nil external defaults to a fresh
// ScopeExecutor private to this call — the source instead reuses one
// ScopeExecutor per OS thread for the whole process lifetime via
// thread_local!; Go has no goroutine-local storage to hang that on, so a
// call-scoped executor is substituted. This is strictly safer (nothing
// outlives the call that could let an unrelated Scope reuse it) at the
// cost of the source's cross-scope executor reuse, which this package
// never needed in the first place since scope() always builds its own.
func ScopeWithExecutor[T any](p *TaskPool, tickGlobalExecutor bool, external *executor.ScopeExecutor, fn func(s *Scope[T])) []T {
	scopeExec := executor.NewScopeExecutor()
	ext := external
	if ext == nil {
		ext = scopeExec
	}

	s := &Scope[T]{
		global:   p.global,
		external: ext,
		scope:    scopeExec,
		spawned:  queue.NewDefault[*task.FallibleTask[T]](),
	}

	// cancelRemaining runs on every exit path that isn't "drained the
	// queue to empty normally", including a panic from fn itself or from
	// a spawned task's re-raised panic below — the Go stand-in for the
	// source's Scope::drop.
	drained := false
	defer func() {
		if !drained {
			s.cancelRemaining()
		}
	}()

	fn(s)

	if s.spawned.IsEmpty() {
		drained = true
		return nil
	}

	tickGlobalExecutor = tickGlobalExecutor || p.threadNum == 0

	driveCtx, stopDriving := context.WithCancel(context.Background())
	var driveWG sync.WaitGroup

	driveWG.Add(1)
	go func() {
		defer driveWG.Done()
		ticker := scopeExec.Ticker()
		for ticker.Tick(driveCtx) {
		}
	}()

	if tickGlobalExecutor {
		if worker, err := p.global.BindWorker(); err == nil {
			driveWG.Add(1)
			go func() {
				defer driveWG.Done()
				worker.Run(driveCtx)
			}()
		}
		// If every seat is already bound (a full pool with no spare
		// capacity), the already-running worker goroutines still drain
		// the global queue; there is nothing extra this call needs to
		// do, matching the source's fallback where tick_global_executor
		// is only ever a speed-up, never a correctness requirement, once
		// real worker threads exist.
	}
	defer func() {
		stopDriving()
		driveWG.Wait()
	}()

	results := make([]T, 0, s.spawned.LenHint())
	waitCtx := context.Background()
	for {
		t, ok := s.spawned.Pop()
		if !ok {
			break
		}
		v, taskOK := t.Wait(waitCtx)
		if !taskOK {
			continue
		}
		results = append(results, v)
	}

	drained = true
	return results
}
