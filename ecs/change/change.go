// Package change implements the tick-paired borrow types that give every
// table cell access change detection: a value handle paired with pointers
// into its added/changed tick slots, where an exclusive ("Mut") handle flips
// the changed tick on mutable access regardless of whether the caller
// actually wrote anything (spec.md §4.3 Change-tracked borrows).
package change

import (
	"github.com/v-craft/vcgo/ecs/tick"
	"github.com/v-craft/vcgo/ptr"
)

// Ticks is the (added, changed, last_run, this_run) bundle every borrow type
// carries alongside its value. Added/Changed are pointers directly into a
// column's tick arrays — Go's garbage collector keeps the backing array
// alive for as long as anything points into it, so unlike the source design
// there is no separate lifetime to track here.
type Ticks struct {
	Added   *tick.Tick
	Changed *tick.Tick
	LastRun tick.Tick
	ThisRun tick.Tick
}

// IsAdded reports whether the cell's added tick is newer than LastRun.
func (t Ticks) IsAdded() bool {
	return t.Added.NewerThan(t.LastRun, t.ThisRun)
}

// IsChanged reports whether the cell's changed tick is newer than LastRun.
func (t Ticks) IsChanged() bool {
	return t.Changed.NewerThan(t.LastRun, t.ThisRun)
}

// MarkChanged stamps the changed tick to ThisRun — the effect every mutable
// access (Mut.GetMut, SliceMut.AllMut, ...) has unconditionally.
func (t Ticks) MarkChanged() {
	*t.Changed = t.ThisRun
}

// -----------------------------------------------------------------------------
// Ref / Mut

// Ref is a shared, change-tracked reference to a component or resource.
type Ref[T any] struct {
	value *T
	ticks Ticks
}

// NewRef constructs a Ref over value using the given tick bundle.
func NewRef[T any](value *T, ticks Ticks) Ref[T] {
	return Ref[T]{value: value, ticks: ticks}
}

// Get returns the underlying value, without affecting change tracking.
func (r Ref[T]) Get() *T { return r.value }

// IsAdded reports whether the value was added since LastRun.
func (r Ref[T]) IsAdded() bool { return r.ticks.IsAdded() }

// IsChanged reports whether the value changed since LastRun.
func (r Ref[T]) IsChanged() bool { return r.ticks.IsChanged() }

// Ticks exposes the underlying tick bundle, e.g. to build a Ref<U> over a
// projected field via MapRef.
func (r Ref[T]) Ticks() Ticks { return r.ticks }

// Untyped erases T, producing an UntypedRef — the table layer's native
// currency.
func (r Ref[T]) Untyped() UntypedRef {
	return UntypedRef{Value: ptr.SharedOf(r.value), Ticks: r.ticks}
}

// MapRef transforms a Ref[T] into a Ref[U] via an accessor, preserving the
// tick bundle (and therefore change-detection history) — e.g. projecting a
// struct field out of a component. Expressed as a free function, not a
// method, because Go methods cannot introduce a new type parameter.
func MapRef[T, U any](r Ref[T], f func(*T) *U) Ref[U] {
	return Ref[U]{value: f(r.value), ticks: r.ticks}
}

// TryMapRef is MapRef's fallible counterpart.
func TryMapRef[T, U any](r Ref[T], f func(*T) (*U, error)) (Ref[U], error) {
	v, err := f(r.value)
	if err != nil {
		return Ref[U]{}, err
	}
	return Ref[U]{value: v, ticks: r.ticks}, nil
}

// Mut is an exclusive, change-tracked reference to a component or resource.
type Mut[T any] struct {
	value *T
	ticks Ticks
}

// NewMut constructs a Mut over value using the given tick bundle.
func NewMut[T any](value *T, ticks Ticks) Mut[T] {
	return Mut[T]{value: value, ticks: ticks}
}

// Peek returns the underlying value for reading only, without marking it
// changed — the counterpart of the source design's plain (non-mut) Deref on
// a Mut handle.
func (m Mut[T]) Peek() *T { return m.value }

// GetMut returns the underlying value for writing, unconditionally marking
// it changed — callers that only intend to read should use Peek instead, to
// avoid spurious change-detection positives.
func (m Mut[T]) GetMut() *T {
	m.ticks.MarkChanged()
	return m.value
}

// IsAdded reports whether the value was added since LastRun.
func (m Mut[T]) IsAdded() bool { return m.ticks.IsAdded() }

// IsChanged reports whether the value changed since LastRun.
func (m Mut[T]) IsChanged() bool { return m.ticks.IsChanged() }

// Ticks exposes the underlying tick bundle.
func (m Mut[T]) Ticks() Ticks { return m.ticks }

// ReadOnly narrows m to a Ref over the same cell, without marking it
// changed.
func (m Mut[T]) ReadOnly() Ref[T] {
	return Ref[T]{value: m.value, ticks: m.ticks}
}

// Untyped erases T, producing an UntypedMut.
func (m Mut[T]) Untyped() UntypedMut {
	return UntypedMut{Value: ptr.MutOf(m.value), Ticks: m.ticks}
}

// MapMut transforms a Mut[T] into a Mut[U] via an accessor, preserving the
// tick bundle. The accessor must only navigate to a sub-value, not mutate —
// mutating through it without going through GetMut is undefined behavior
// from a change-detection point of view (the write will not be observed).
func MapMut[T, U any](m Mut[T], f func(*T) *U) Mut[U] {
	return Mut[U]{value: f(m.value), ticks: m.ticks}
}

// TryMapMut is MapMut's fallible counterpart.
func TryMapMut[T, U any](m Mut[T], f func(*T) (*U, error)) (Mut[U], error) {
	v, err := f(m.value)
	if err != nil {
		return Mut[U]{}, err
	}
	return Mut[U]{value: v, ticks: m.ticks}, nil
}

// -----------------------------------------------------------------------------
// Res / ResMut
//
// The source design gives resources (singleton, non-table-row values) their
// own Res/ResMut types purely to carry a `Resource` trait bound at compile
// time; Go has no equivalent marker-trait mechanism to enforce, and nothing
// about Ref/Mut's implementation differs for a resource versus a component.
// Res and ResMut are therefore plain aliases: spec.md's named types all
// exist, with no duplicated behavior to keep in sync.

// Res is a shared, change-tracked reference to a world resource.
type Res[T any] = Ref[T]

// ResMut is an exclusive, change-tracked reference to a world resource.
type ResMut[T any] = Mut[T]
