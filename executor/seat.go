package executor

import "sync/atomic"

// seat is a worker thread's position in a GlobalExecutor: a local task
// queue plus an occupancy flag claimed once via compare-and-swap when a
// worker binds to it. SeatStat.Processed counts the runnables the bound
// worker has run, so a task pool can report per-seat throughput without
// instrumenting every spawn call site.
type seat struct {
	queue     *localQueue
	occupied  atomic.Bool
	processed atomic.Uint64
}

func newSeat(capacity int) *seat {
	return &seat{queue: newLocalQueue(capacity)}
}

// SeatStat is a point-in-time snapshot of one worker seat.
type SeatStat struct {
	Index     int
	Occupied  bool
	Processed uint64
}
