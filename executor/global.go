// Package executor provides the three-tier task scheduling a task pool
// builds on: GlobalExecutor, a work-stealing scheduler shared by every
// worker in a pool; LocalExecutor, for work pinned to the goroutine that
// spawned it; and ScopeExecutor, for tasks scoped to a single call that
// borrows data living on the caller's stack.
package executor

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/v-craft/vcgo/queue"
	"github.com/v-craft/vcgo/task"
)

const (
	// workerQueueSize is each worker's local queue capacity.
	workerQueueSize = 63
	// fairnessStealingInterval is how many runnables a worker drains
	// before topping its local queue back up from the global queue, so a
	// worker that never runs dry still shares fairly with the rest of
	// the pool.
	fairnessStealingInterval = 61
	// periodicStealingThreshold: above this local queue length, skip the
	// fairness top-up — there's already enough local work queued.
	periodicStealingThreshold = (workerQueueSize >> 2) + (workerQueueSize >> 1)
	// runBatch bounds how many runnables a worker drains before yielding
	// to let other goroutines on the same OS thread make progress.
	runBatch = 200
)

// ErrNoAvailableSeats is returned by BindWorker once every seat an executor
// was built with has already been claimed.
var ErrNoAvailableSeats = errors.New("executor: no available seats")

// GlobalExecutor is a work-stealing scheduler for a fixed pool of worker
// seats. Spawn pushes a Runnable onto its shared queue; bound workers pull
// from their own seat first, then the shared queue, then each other.
type GlobalExecutor struct {
	queue    *queue.ListQueue[task.Runnable]
	seats    []*seat
	lounge   *lounge
	isWaking atomic.Bool
}

// NewGlobalExecutor builds an executor with workerNum seats. Every seat
// starts unoccupied; is_waking starts true, since with no worker bound yet
// there's nobody to wake.
func NewGlobalExecutor(workerNum int) *GlobalExecutor {
	seats := make([]*seat, workerNum)
	for i := range seats {
		seats[i] = newSeat(workerQueueSize)
	}
	e := &GlobalExecutor{
		queue:  queue.New[task.Runnable](64),
		seats:  seats,
		lounge: newLounge(workerNum),
	}
	e.isWaking.Store(true)
	return e
}

// NumSeats reports how many worker seats this executor was built with.
func (e *GlobalExecutor) NumSeats() int { return len(e.seats) }

// wakeOne wakes a single sleeping worker, gated by a compare-and-swap on
// isWaking so concurrent pushes don't all pile onto the lounge lock trying
// to wake the same worker.
func (e *GlobalExecutor) wakeOne() {
	if e.isWaking.CompareAndSwap(false, true) {
		e.lounge.wakeOne()
	}
}

// BindWorker claims an unoccupied seat and returns a Worker bound to it.
// Call once per goroutine a task pool dedicates to this executor.
func (e *GlobalExecutor) BindWorker() (*Worker, error) {
	for i, s := range e.seats {
		if s.occupied.CompareAndSwap(false, true) {
			seed := uint64(time.Now().UnixNano()) ^ (uint64(i+1) * 0x9E3779B97F4A7C15)
			return &Worker{
				exec:      e,
				seatIndex: i,
				queue:     s.queue,
				rng:       newXorShift64Star(seed),
				working:   true,
			}, nil
		}
	}
	return nil, ErrNoAvailableSeats
}

// Spawn schedules fn onto e's global queue and returns a handle to await
// its result. fn runs on whichever bound worker next pulls it.
func Spawn[T any](e *GlobalExecutor, fn func() T) *task.Task[T] {
	return task.Spawn(e.schedule, fn)
}

// SpawnFallible is Spawn for callers that want cancellation folded into a
// boolean rather than a distinct error.
func SpawnFallible[T any](e *GlobalExecutor, fn func() T) *task.FallibleTask[T] {
	return task.SpawnFallible(e.schedule, fn)
}

func (e *GlobalExecutor) schedule(r task.Runnable) {
	e.queue.Push(r)
	e.wakeOne()
}

// SeatStats returns a snapshot of every seat's occupancy and processed
// count.
func (e *GlobalExecutor) SeatStats() []SeatStat {
	stats := make([]SeatStat, len(e.seats))
	for i, s := range e.seats {
		stats[i] = SeatStat{
			Index:     i,
			Occupied:  s.occupied.Load(),
			Processed: s.processed.Load(),
		}
	}
	return stats
}
