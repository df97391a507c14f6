package change

import (
	"unsafe"

	"github.com/v-craft/vcgo/ecs/tick"
	"github.com/v-craft/vcgo/ptr"
)

// UntypedRef is a shared, change-tracked, type-erased reference — what the
// table layer hands back before a caller has reasserted a concrete type.
type UntypedRef struct {
	Value ptr.Shared
	Ticks Ticks
}

// IsAdded reports whether the cell was added since LastRun.
func (u UntypedRef) IsAdded() bool { return u.Ticks.IsAdded() }

// IsChanged reports whether the cell changed since LastRun.
func (u UntypedRef) IsChanged() bool { return u.Ticks.IsChanged() }

// WithType reasserts T as the erased pointee type, producing a typed Ref.
// The caller must ensure T actually matches what the table column stores.
func WithType[T any](u UntypedRef) Ref[T] {
	return Ref[T]{value: ptr.As[T](u.Value), ticks: u.Ticks}
}

// UntypedMut is an exclusive, change-tracked, type-erased reference.
type UntypedMut struct {
	Value ptr.Mut
	Ticks Ticks
}

// IsAdded reports whether the cell was added since LastRun.
func (u UntypedMut) IsAdded() bool { return u.Ticks.IsAdded() }

// IsChanged reports whether the cell changed since LastRun.
func (u UntypedMut) IsChanged() bool { return u.Ticks.IsChanged() }

// ReadOnly narrows u to an UntypedRef without marking anything changed.
func (u UntypedMut) ReadOnly() UntypedRef {
	return UntypedRef{Value: u.Value.Shared(), Ticks: u.Ticks}
}

// WithTypeMut reasserts T as the erased pointee type, producing a typed
// Mut. The caller must ensure T actually matches what the table column
// stores.
func WithTypeMut[T any](u UntypedMut) Mut[T] {
	return Mut[T]{value: ptr.MutAs[T](u.Value), ticks: u.Ticks}
}

// UntypedSliceRef is a shared, change-tracked, type-erased reference to an
// entire column. Added/Changed are already concretely typed ([]tick.Tick —
// the tick type itself is never erased, only the component value is), so
// only Value needs a WithType reassertion to become a usable SliceRef[T].
type UntypedSliceRef struct {
	Value   ptr.Shared
	Length  int
	Added   []tick.Tick
	Changed []tick.Tick
	LastRun tick.Tick
	ThisRun tick.Tick
}

// Len returns the slice's element count.
func (u UntypedSliceRef) Len() int { return u.Length }

// IsEmpty reports whether the slice has no elements.
func (u UntypedSliceRef) IsEmpty() bool { return u.Length == 0 }

// WithTypeSlice reasserts T as the erased element type, producing a typed
// SliceRef. The caller must ensure T actually matches what the table column
// stores.
func WithTypeSlice[T any](u UntypedSliceRef) SliceRef[T] {
	base := ptr.As[T](u.Value)
	values := unsafe.Slice(base, u.Length)
	return NewSliceRef(values, u.Added, u.Changed, u.LastRun, u.ThisRun)
}

// UntypedSliceMut is an exclusive, change-tracked, type-erased reference to
// an entire column.
type UntypedSliceMut struct {
	Value   ptr.Mut
	Length  int
	Added   []tick.Tick
	Changed []tick.Tick
	LastRun tick.Tick
	ThisRun tick.Tick
}

// Len returns the slice's element count.
func (u UntypedSliceMut) Len() int { return u.Length }

// IsEmpty reports whether the slice has no elements.
func (u UntypedSliceMut) IsEmpty() bool { return u.Length == 0 }

// WithTypeSliceMut reasserts T as the erased element type, producing a typed
// SliceMut. The caller must ensure T actually matches what the table column
// stores.
func WithTypeSliceMut[T any](u UntypedSliceMut) SliceMut[T] {
	base := ptr.MutAs[T](u.Value)
	values := unsafe.Slice(base, u.Length)
	return NewSliceMut(values, u.Added, u.Changed, u.LastRun, u.ThisRun)
}
