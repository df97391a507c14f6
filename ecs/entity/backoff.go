package entity

import (
	"runtime"
	"sync/atomic"
)

// backoff implements exponential spin-then-yield backoff, the same shape the
// teacher design uses to bound CPU use in spin-only primitives: busy-spins
// that double in length each step for the first few steps, then a
// runtime.Gosched on every later step.
type backoff struct {
	step int
}

const (
	backoffSpinLimit  = 6
	backoffYieldLimit = 10
)

// Snooze performs one step of backoff and advances its internal counter.
func (b *backoff) Snooze() {
	if b.step <= backoffSpinLimit {
		for i := 0; i < 1<<uint(b.step); i++ {
			spinCounter.Add(1)
		}
	} else {
		runtime.Gosched()
	}
	if b.step <= backoffYieldLimit {
		b.step++
	}
}

// spinCounter absorbs the busy-spin iterations below; touching a shared
// atomic (rather than an empty loop body) keeps the compiler from optimizing
// the spin away entirely.
var spinCounter atomic.Uint64
