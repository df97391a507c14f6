package change

import (
	"github.com/v-craft/vcgo/ecs/tick"
)

// SliceRef is a shared, change-tracked reference to an entire column's worth
// of components of the same type.
type SliceRef[T any] struct {
	value   []T
	added   []tick.Tick
	changed []tick.Tick
	lastRun tick.Tick
	thisRun tick.Tick
}

// NewSliceRef constructs a SliceRef over a column slice and its parallel
// tick arrays. len(value) == len(added) == len(changed) is a precondition.
func NewSliceRef[T any](value []T, added, changed []tick.Tick, lastRun, thisRun tick.Tick) SliceRef[T] {
	return SliceRef[T]{value: value, added: added, changed: changed, lastRun: lastRun, thisRun: thisRun}
}

// Len returns the number of elements in the slice.
func (s SliceRef[T]) Len() int { return len(s.value) }

// All returns the underlying slice for reading, without marking any element
// changed.
func (s SliceRef[T]) All() []T { return s.value }

// At returns a per-element Ref carrying that element's own tick slots.
func (s SliceRef[T]) At(i int) Ref[T] {
	return Ref[T]{
		value: &s.value[i],
		ticks: Ticks{Added: &s.added[i], Changed: &s.changed[i], LastRun: s.lastRun, ThisRun: s.thisRun},
	}
}

// Iter ranges over per-element Refs, usable as `for i, r := range s.Iter()`.
func (s SliceRef[T]) Iter() func(yield func(int, Ref[T]) bool) {
	return func(yield func(int, Ref[T]) bool) {
		for i := range s.value {
			if !yield(i, s.At(i)) {
				return
			}
		}
	}
}

// SliceMut is an exclusive, change-tracked reference to an entire column's
// worth of components of the same type.
type SliceMut[T any] struct {
	value   []T
	added   []tick.Tick
	changed []tick.Tick
	lastRun tick.Tick
	thisRun tick.Tick
}

// NewSliceMut constructs a SliceMut over a column slice and its parallel
// tick arrays.
func NewSliceMut[T any](value []T, added, changed []tick.Tick, lastRun, thisRun tick.Tick) SliceMut[T] {
	return SliceMut[T]{value: value, added: added, changed: changed, lastRun: lastRun, thisRun: thisRun}
}

// Len returns the number of elements in the slice.
func (s SliceMut[T]) Len() int { return len(s.value) }

// All returns the underlying slice for reading, without marking any element
// changed — the "coarse" read path: spec.md §4.3 warns that marking the
// whole slice changed just because it was read would be a false positive,
// so only the mutable accessors below do that.
func (s SliceMut[T]) All() []T { return s.value }

// markAllChanged stamps every element's changed tick to thisRun — the
// "mark all changed" semantics spec.md describes for a whole-slice mutable
// deref.
func (s SliceMut[T]) markAllChanged() {
	for i := range s.changed {
		s.changed[i] = s.thisRun
	}
}

// AllMut returns the underlying slice for writing, unconditionally marking
// every element changed.
func (s SliceMut[T]) AllMut() []T {
	s.markAllChanged()
	return s.value
}

// At returns a per-element Ref carrying that element's own tick slots,
// without affecting any other element's change state.
func (s SliceMut[T]) At(i int) Ref[T] {
	return Ref[T]{
		value: &s.value[i],
		ticks: Ticks{Added: &s.added[i], Changed: &s.changed[i], LastRun: s.lastRun, ThisRun: s.thisRun},
	}
}

// AtMut returns a per-element Mut carrying that element's own tick slots;
// marking it changed only affects that one element (spec.md §4.3: "the
// slice-level mark-all-changed semantics apply when the whole slice is
// mutably dereferenced, not when individual elements are").
func (s SliceMut[T]) AtMut(i int) Mut[T] {
	return Mut[T]{
		value: &s.value[i],
		ticks: Ticks{Added: &s.added[i], Changed: &s.changed[i], LastRun: s.lastRun, ThisRun: s.thisRun},
	}
}

// Iter ranges over per-element Muts, usable as `for i, m := range s.Iter()`.
func (s SliceMut[T]) Iter() func(yield func(int, Mut[T]) bool) {
	return func(yield func(int, Mut[T]) bool) {
		for i := range s.value {
			if !yield(i, s.AtMut(i)) {
				return
			}
		}
	}
}
