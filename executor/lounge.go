package executor

import "sync"

// lounge tracks which worker seats are asleep and holds the channel each
// sleeping worker is blocked on. A worker's state runs: working, then
// (on finding no runnable) sleeping with a registered channel, then back to
// working once something closes that channel. "Waking" is the brief window
// between a channel being closed and the worker actually resuming — the
// source needs to distinguish it to avoid clobbering an in-flight Waker
// clone from an async poll; this loop has no such re-entrancy, so waking
// only matters here for the is_waking thundering-herd guard, not for
// waker bookkeeping.
type lounge struct {
	mu       sync.Mutex
	sleeping int
	waking   int
	wakers   []chan struct{}
}

func newLounge(n int) *lounge {
	return &lounge{wakers: make([]chan struct{}, n)}
}

func (l *lounge) isWakingLocked() bool {
	return l.waking > 0 || l.sleeping == 0
}

// sleep registers id as asleep, returning the channel it should block on
// and whether the executor should consider a wakeup already in flight.
func (l *lounge) sleep(id int) (<-chan struct{}, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch := make(chan struct{})
	if l.wakers[id] == nil {
		l.sleeping++
	}
	l.wakers[id] = ch
	return ch, l.isWakingLocked()
}

// wake transitions id back to working, returning the executor's updated
// wakeup-in-flight flag.
func (l *lounge) wake(id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.wakers[id] != nil {
		l.wakers[id] = nil
		l.sleeping--
	} else {
		l.waking--
	}
	return l.isWakingLocked()
}

// wakeOne closes one sleeping seat's channel, if any, moving it from
// sleeping to waking. Callers gate entry on GlobalExecutor.isWaking so only
// one goroutine ever reaches here per wakeup.
func (l *lounge) wakeOne() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, ch := range l.wakers {
		if ch != nil {
			close(ch)
			l.wakers[i] = nil
			l.sleeping--
			l.waking++
			return
		}
	}
}
