// Package taskpool is the facade spec.md §4.7 describes: thread creation
// and lifecycle, spawn/spawn_local routing and scope. It wires together
// executor.GlobalExecutor, executor.LocalExecutor and executor.ScopeExecutor
// into the one type applications actually hold.
package taskpool

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/v-craft/vcgo/executor"
	"github.com/v-craft/vcgo/task"
)

// Builder configures a TaskPool before Build spins up its worker goroutines.
// Mirrors the source's TaskPoolBuilder: thread_num, thread_name,
// on_thread_spawn and on_thread_destroy all have a direct analogue here.
// stack_size has none — goroutine stacks grow on demand, so there is
// nothing for a Go caller to size up front.
type Builder struct {
	threadNum       int
	threadName      string
	onThreadSpawn   func()
	onThreadDestroy func()
	logger          *slog.Logger
}

// NewBuilder returns a Builder with every option unset.
func NewBuilder() *Builder { return &Builder{} }

// ThreadNum sets how many worker goroutines the pool starts with. Unset or
// non-positive falls back to runtime.GOMAXPROCS(0), matching the source's
// default of the logical core count.
func (b *Builder) ThreadNum(n int) *Builder {
	b.threadNum = n
	return b
}

// ThreadName sets the name used for worker goroutines in log lines and in
// the error returned when a worker cannot bind a seat. Go has no OS-level thread naming API, so this
// only affects text the pool itself produces.
func (b *Builder) ThreadName(name string) *Builder {
	b.threadName = name
	return b
}

// OnThreadSpawn sets a callback run once on each worker goroutine before it
// starts pulling runnables.
func (b *Builder) OnThreadSpawn(f func()) *Builder {
	b.onThreadSpawn = f
	return b
}

// OnThreadDestroy sets a callback run once on each worker goroutine right
// before it returns.
func (b *Builder) OnThreadDestroy(f func()) *Builder {
	b.onThreadDestroy = f
	return b
}

// Logger sets the structured logger used for worker lifecycle events
// (matching SPEC_FULL.md §2's ambient logging convention). Unset falls back
// to slog.Default().
func (b *Builder) Logger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// Build creates the pool's GlobalExecutor, binds one Worker per seat, and
// starts a goroutine per worker. Each worker goroutine runs the bound
// Worker's steal loop and, alongside it, automatically ticks a private
// LocalExecutor — the Go analogue of the source's "worker threads tick
// their LocalExecutor automatically" (spec.md §4.7).
func (b *Builder) Build() *TaskPool {
	threadNum := b.threadNum
	if threadNum <= 0 {
		threadNum = runtime.GOMAXPROCS(0)
	}
	if threadNum < 1 {
		threadNum = 1
	}

	name := b.threadName
	if name == "" {
		name = "TaskPool"
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(ctx)
	global := executor.NewGlobalExecutor(threadNum)

	p := &TaskPool{
		id:        id,
		global:    global,
		threadNum: threadNum,
		cancel:    cancel,
		group:     group,
		logger:    logger,
		mainLocal: executor.NewLocalExecutor(),
		mainScope: executor.NewScopeExecutor(),
	}

	logger.Debug("taskpool: starting", "pool", id, "threads", threadNum, "name", name)
	for i := 0; i < threadNum; i++ {
		seat := i
		group.Go(func() error {
			return p.runWorker(gctx, seat, name, b.onThreadSpawn, b.onThreadDestroy)
		})
	}

	return p
}

// TaskPool owns a fixed set of worker goroutines bound to a shared
// GlobalExecutor, plus one designated LocalExecutor and ScopeExecutor for
// the goroutine that holds the pool (the Go stand-in for the source's
// per-OS-thread thread_local!, since Go has no goroutine-local storage —
// see MainLocalExecutor/MainScopeExecutor).
type TaskPool struct {
	id        uuid.UUID
	global    *executor.GlobalExecutor
	threadNum int
	cancel    context.CancelFunc
	group     *errgroup.Group
	logger    *slog.Logger

	mainLocal *executor.LocalExecutor
	mainScope *executor.ScopeExecutor

	closeOnce sync.Once
}

// ID returns the pool's process-unique identity, generated once at Build
// time (github.com/google/uuid) and embedded in every lifecycle log line and
// in the error returned when a worker cannot bind a seat — useful for telling multiple TaskPool instances
// apart in a shared log stream.
func (p *TaskPool) ID() uuid.UUID { return p.id }

// New builds a TaskPool with default configuration (NewBuilder().Build()).
func New() *TaskPool { return NewBuilder().Build() }

// ThreadNum reports how many worker goroutines back the pool, not counting
// whatever goroutine holds the TaskPool value itself.
func (p *TaskPool) ThreadNum() int { return p.threadNum }

// GlobalExecutor exposes the pool's GlobalExecutor, mainly so Scope (in
// scope.go) can spawn onto it and so tests can inspect SeatStats.
func (p *TaskPool) GlobalExecutor() *executor.GlobalExecutor { return p.global }

// MainLocalExecutor returns the LocalExecutor dedicated to the goroutine
// that built the pool (typically "main"). Worker goroutines automatically
// tick their own private LocalExecutor and never touch this one; a caller
// on any other goroutine that wants spawn_local semantics should build its
// own executor.NewLocalExecutor() instead of sharing this one, since ticking
// and spawning must happen on a single consistent goroutine.
func (p *TaskPool) MainLocalExecutor() *executor.LocalExecutor { return p.mainLocal }

// MainScopeExecutor returns the ScopeExecutor dedicated to the goroutine
// that built the pool, usable as the SpawnOnExternal target (by passing it
// to ScopeWithExecutor) and as the "main thread inbox" spec.md
// §4.4 describes for worker-to-main handoff.
func (p *TaskPool) MainScopeExecutor() *executor.ScopeExecutor { return p.mainScope }

// Spawn schedules a Send + 'static-equivalent function onto the pool's
// GlobalExecutor. Go has no Send marker, so the only real constraint carried
// over is "fn must not capture state that assumes it runs on a specific
// goroutine" — the caller's responsibility, same as the source's doc
// comment puts it.
func Spawn[T any](p *TaskPool, fn func() T) *task.Task[T] {
	return executor.Spawn(p.global, fn)
}

// SpawnLocal schedules fn onto the pool's MainLocalExecutor. The caller
// must tick that executor for fn to ever run — workers only tick their own
// private LocalExecutors; see MainLocalExecutor.
func SpawnLocal[T any](p *TaskPool, fn func() T) *task.Task[T] {
	return executor.SpawnLocal(p.mainLocal, fn)
}

func (p *TaskPool) runWorker(ctx context.Context, seatHint int, threadName string, onSpawn, onDestroy func()) error {
	worker, err := p.global.BindWorker()
	if err != nil {
		return fmt.Errorf("taskpool: pool %s, %s (%d): %w", p.id, threadName, seatHint, err)
	}

	p.logger.Debug("taskpool: worker starting", "pool", p.id, "thread", threadName, "seat", seatHint)
	if onSpawn != nil {
		onSpawn()
	}
	if onDestroy != nil {
		defer onDestroy()
	}
	defer p.logger.Debug("taskpool: worker stopped", "pool", p.id, "thread", threadName, "seat", seatHint)

	local := executor.NewLocalExecutor()

	var localWG sync.WaitGroup
	localWG.Add(1)
	go func() {
		defer localWG.Done()
		local.Run(ctx)
	}()

	worker.Run(ctx)
	localWG.Wait()
	return nil
}

// Close cancels every worker goroutine's run loop and blocks until all of
// them have returned, propagating the first non-nil worker error (if any) —
// the errgroup.Group "join all, propagate first error" shape standing in for
// the source's TaskPool::drop, which closes the shutdown channel and joins
// every thread. Host code must call Close before process exit per spec.md
// §6's host lifecycle contract. Close is idempotent; only the first call's
// error is returned, matching sync.Once's single-execution guarantee.
func (p *TaskPool) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.cancel()
		err = p.group.Wait()
		p.logger.Debug("taskpool: stopped", "pool", p.id, "err", err)
	})
	return err
}
