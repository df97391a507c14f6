// Package syncutil provides one-shot initialization primitives: Once (an
// init-exactly-once gate with poisoning-on-panic, matching sync.Once plus a
// few diagnostics it doesn't expose) and OnceCell (a lazily-initialized
// value built on top of it).
package syncutil

import (
	"fmt"
	"runtime"
	"sync/atomic"
)

// State is the lifecycle of a Once, exposed for diagnostics.
type State uint8

const (
	StateIncomplete State = iota
	StateRunning
	StateComplete
	StatePoisoned
)

func (s State) String() string {
	switch s {
	case StateIncomplete:
		return "incomplete"
	case StateRunning:
		return "running"
	case StateComplete:
		return "complete"
	case StatePoisoned:
		return "poisoned"
	default:
		return "unknown"
	}
}

// onceBackoff is a small exponential yield loop, similar in shape to the
// entity allocator's CAS retry backoff: 2^step Gosched calls for the first
// few steps, then one Gosched per step for as long as the caller keeps
// waiting.
type onceBackoff struct{ step int }

const onceSpinLimit = 6

func (b *onceBackoff) snooze() {
	if b.step <= onceSpinLimit {
		for i := 0; i < 1<<uint(b.step); i++ {
			runtime.Gosched()
		}
	} else {
		runtime.Gosched()
	}
	b.step++
}

// OnceState is handed to the closure passed to Once.CallOnceForce, letting it
// observe whether this Once was poisoned prior to the forced call.
type OnceState struct {
	poisoned bool
}

// IsPoisoned reports whether the Once was poisoned before this call.
func (s OnceState) IsPoisoned() bool { return s.poisoned }

// Once is a low-level one-time-execution gate. A zero Once is ready to use.
// If the closure passed to CallOnce panics, the Once becomes poisoned and
// every future CallOnce panics in turn. Go's own sync.Once has no poisoning;
// this follows the source's stricter fallback instead.
type Once struct {
	state atomic.Uint32
}

// onceIncomplete is deliberately the zero value: a zero-value Once (and the
// Once embedded in a zero-value OnceCell) must start out incomplete, not
// complete, or CallOnce/GetOrInit would silently never run f.
const (
	onceIncomplete uint32 = 0
	onceRunning    uint32 = 1
	onceComplete   uint32 = 2
	oncePoisoned   uint32 = 3
)

// IsCompleted reports whether some CallOnce call has run to completion. A
// false result can be stale the instant it's observed if another goroutine
// is completing the call concurrently; that's inherent to the primitive, not
// a bug.
func (o *Once) IsCompleted() bool {
	return o.state.Load() == onceComplete
}

// State reports the Once's current lifecycle state, for diagnostics only —
// never branch production logic on it.
func (o *Once) State() State {
	switch o.state.Load() {
	case onceComplete:
		return StateComplete
	case onceRunning:
		return StateRunning
	case oncePoisoned:
		return StatePoisoned
	default:
		return StateIncomplete
	}
}

// CallOnce runs f the first time it's called on this Once and never again.
// Concurrent callers block until the running call finishes. If f panics, the
// Once is poisoned and every subsequent CallOnce panics instead of running f
// again; CallOnceForce still runs its closure on a poisoned Once.
func (o *Once) CallOnce(f func()) {
	if o.IsCompleted() {
		return
	}
	o.call(false, func(*OnceState) { f() })
}

// CallOnceForce behaves like CallOnce but runs f even if the Once was
// previously poisoned, instead of panicking. If f itself does not panic this
// time, the Once clears its poison and becomes complete.
func (o *Once) CallOnceForce(f func(*OnceState)) {
	if o.IsCompleted() {
		return
	}
	o.call(true, f)
}

func (o *Once) call(ignorePoisoning bool, f func(*OnceState)) {
	bo := &onceBackoff{}
	for {
		state := o.state.Load()
		switch state {
		case onceComplete:
			return
		case oncePoisoned:
			if !ignorePoisoning {
				panic("syncutil: Once instance has previously been poisoned")
			}
			fallthrough
		case onceIncomplete:
			if !o.state.CompareAndSwap(state, onceRunning) {
				continue
			}
			ones := &OnceState{poisoned: state == oncePoisoned}
			setTo := oncePoisoned
			func() {
				// setTo stays oncePoisoned if f panics, so the deferred
				// store still poisons the Once before the panic propagates.
				defer func() { o.state.Store(setTo) }()
				f(ones)
				setTo = onceComplete
			}()
			return
		default: // onceRunning
			bo.snooze()
		}
	}
}

// Wait blocks until a CallOnce has completed, panicking if the Once is
// poisoned.
func (o *Once) Wait() {
	o.innerWait(false)
}

// WaitForce blocks until a CallOnce has completed, ignoring poisoning (it
// blocks forever rather than panicking if the Once never recovers).
func (o *Once) WaitForce() {
	o.innerWait(true)
}

func (o *Once) innerWait(ignorePoisoning bool) {
	if o.IsCompleted() {
		return
	}
	bo := &onceBackoff{}
	for {
		state := o.state.Load()
		switch state {
		case onceComplete:
			return
		case oncePoisoned:
			if !ignorePoisoning {
				panic("syncutil: Once instance has previously been poisoned")
			}
			fallthrough
		default:
			bo.snooze()
		}
	}
}

func (s State) GoString() string {
	return fmt.Sprintf("syncutil.State(%s)", s.String())
}
