// Package tick implements the monotonic change-detection clock shared by
// every table column: a Tick is stamped onto a cell whenever it is added or
// mutably dereferenced, and queries compare stamps against a (last_run,
// this_run) window using wrap-safe arithmetic (spec.md §4.1 Tick).
package tick

import "math"

// Tick is a monotonic counter associated with a world. It wraps around
// uint32's range; ordering comparisons must account for that, which is what
// NewerThan does.
type Tick uint32

// relativeTo returns how many ticks ago t happened, measured from this_run.
// Only meaningful when t is within MaxDelta of this_run; callers periodically
// call CheckAndClamp to keep that true.
func (t Tick) relativeTo(thisRun Tick) uint32 {
	return uint32(thisRun - t)
}

// NewerThan reports whether t is newer than lastRun, as observed from
// thisRun. This is spec.md's "newer than last_run relative to this_run"
// check: (this_run - t) < (this_run - last_run) under wraparound.
func (t Tick) NewerThan(lastRun, thisRun Tick) bool {
	tDelta := t.relativeTo(thisRun)
	lastRunDelta := lastRun.relativeTo(thisRun)
	return tDelta < lastRunDelta
}

// MaxDelta is the largest age a tick may reach before CheckTicks clamping is
// required to avoid wraparound ambiguity (spec.md §7: "at least once per
// ~u32::MAX/2 ticks").
const MaxDelta = math.MaxUint32 / 2

// CheckAndClamp clamps t so that it is never more than MaxDelta ticks older
// than thisRun, preserving relative ordering among ticks that were already
// within range. Returns the possibly-adjusted tick.
func (t Tick) CheckAndClamp(thisRun Tick) Tick {
	age := t.relativeTo(thisRun)
	if age > MaxDelta {
		return thisRun - MaxDelta
	}
	return t
}

// CheckTicks bundles the parameters for a table-wide tick clamp pass
// (spec.md §4.2 check_ticks).
type CheckTicks struct {
	ThisRun Tick
}
