package executor

import (
	"context"
	"runtime"

	"github.com/v-craft/vcgo/queue"
	"github.com/v-craft/vcgo/task"
)

// Worker runs a GlobalExecutor's runnables on the goroutine that calls Run.
// It holds its own seat's local queue plus enough state to steal from the
// global queue and from sibling seats when its own queue runs dry.
type Worker struct {
	exec      *GlobalExecutor
	seatIndex int
	queue     *localQueue
	rng       *xorShift64Star
	working   bool
	ticks     uint32
}

// SeatIndex reports which seat this worker is bound to.
func (w *Worker) SeatIndex() int { return w.seatIndex }

// getRunnable implements the three-tier work-stealing priority: this seat's
// own local queue first, then the shared global queue, then a
// random rotation through sibling seats.
func (w *Worker) getRunnable() (task.Runnable, bool) {
	if r, ok := w.queue.pop(); ok {
		return r, true
	}
	if r, ok := stealGlobal(w.exec.queue, w.queue); ok {
		return r, true
	}
	return w.stealFromOthers()
}

func (w *Worker) stealFromOthers() (task.Runnable, bool) {
	seats := w.exec.seats
	n := len(seats)
	start := w.rng.intn(n)
	for i := 0; i < n; i++ {
		s := seats[(start+i)%n]
		if s.queue == w.queue {
			continue
		}
		if r, ok := stealWorker(s.queue, w.queue); ok {
			return r, true
		}
	}
	var zero task.Runnable
	return zero, false
}

func (w *Worker) sleep() <-chan struct{} {
	if !w.working {
		// Woken by wakeOne but found nothing: leave the waking state before
		// registering as a sleeper again.
		w.exec.lounge.wake(w.seatIndex)
	}
	ch, waking := w.exec.lounge.sleep(w.seatIndex)
	w.working = false
	w.exec.isWaking.Store(waking)
	return ch
}

func (w *Worker) wake() {
	waking := w.exec.lounge.wake(w.seatIndex)
	w.exec.isWaking.Store(waking)
	w.working = true
}

// acquire blocks until a runnable is available or ctx is done. Every
// successful acquire also nudges the executor to wake one more sibling,
// so work keeps flowing even if this runnable turns out to run long, and
// periodically tops the local queue back up from the global one for
// fairness.
func (w *Worker) acquire(ctx context.Context) (task.Runnable, bool) {
	for {
		if r, ok := w.getRunnable(); ok {
			return w.onAcquired(r), true
		}

		wakeCh := w.sleep()

		// Re-poll immediately after registering the waker: a Runnable pushed
		// by schedule() in the gap between the getRunnable() miss above and
		// sleep() registering this seat's channel fires wakeOne() against a
		// lounge with no registered waker yet, waking nobody and stranding
		// the task. Catching the race here, before blocking on the select,
		// closes that window instead of parking blind.
		if r, ok := w.getRunnable(); ok {
			return w.onAcquired(r), true
		}

		select {
		case <-wakeCh:
		case <-ctx.Done():
			var zero task.Runnable
			return zero, false
		}
	}
}

// onAcquired runs the bookkeeping every successful acquire needs: transition
// back to working (undoing a sleep registration if one is pending), nudge a
// sibling awake so work keeps flowing, and top up the local queue from the
// global one on a fairness interval.
func (w *Worker) onAcquired(r task.Runnable) task.Runnable {
	if !w.working {
		w.wake()
	}
	w.exec.wakeOne()

	w.ticks++
	if w.ticks >= fairnessStealingInterval {
		periodSteal(w.exec.queue, w.queue)
		w.ticks = 0
	}
	return r
}

// Run drains runnables until ctx is canceled, processing in batches of
// runBatch before yielding so a stream of short tasks can't starve
// sibling goroutines sharing the same OS thread.
func (w *Worker) Run(ctx context.Context) {
	for {
		for i := 0; i < runBatch; i++ {
			r, ok := w.acquire(ctx)
			if !ok {
				return
			}
			r()
			w.exec.seats[w.seatIndex].processed.Add(1)
		}
		select {
		case <-ctx.Done():
			return
		default:
			runtime.Gosched()
		}
	}
}

func stealGlobal(src *queue.ListQueue[task.Runnable], dst *localQueue) (task.Runnable, bool) {
	pop := src.LockPop()
	first, ok := pop.Pop()
	if !ok {
		pop.Unlock()
		var zero task.Runnable
		return zero, false
	}

	var buf [workerQueueSize]task.Runnable
	n := 0
	for n < workerQueueSize {
		r, ok := pop.Pop()
		if !ok {
			break
		}
		buf[n] = r
		n++
	}
	pop.Unlock()

	for i := 0; i < n; i++ {
		if !dst.push(buf[i]) {
			break
		}
	}
	return first, true
}

// stealWorker takes one runnable from src plus roughly half of whatever
// remains, balancing load without fully draining the victim.
func stealWorker(src, dst *localQueue) (task.Runnable, bool) {
	r, ok := src.pop()
	if !ok {
		var zero task.Runnable
		return zero, false
	}
	n := (src.len() + 1) >> 1
	for i := 0; i < n; i++ {
		rr, ok := src.pop()
		if !ok {
			break
		}
		if !dst.push(rr) {
			break
		}
	}
	return r, true
}

func periodSteal(src *queue.ListQueue[task.Runnable], dst *localQueue) {
	n := dst.len()
	if n > periodicStealingThreshold {
		return
	}
	for i := n; i < workerQueueSize; i++ {
		r, ok := src.Pop()
		if !ok {
			return
		}
		if !dst.push(r) {
			src.Push(r)
			return
		}
	}
}
