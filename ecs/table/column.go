package table

import (
	"reflect"
	"unsafe"

	"github.com/v-craft/vcgo/ecs/component"
	"github.com/v-craft/vcgo/ecs/tick"
	"github.com/v-craft/vcgo/ptr"
)

// column is one type-erased slice of component values plus its parallel
// added/changed tick arrays (spec.md §4.1 Table: "Each column carries a
// Layout, an optional drop function, a heap allocation for values, an array
// of added ticks, an array of changed ticks").
//
// Unlike a raw byte buffer, values is kept as a genuinely Go-typed slice
// (via component.Info.GoType) so the garbage collector scans it correctly
// even when T itself contains pointers, strings, slices or maps. Cell
// addresses are still handed out as type-erased unsafe.Pointer through Shared
// / Mut / Owning, matching the rest of the storage layer's erasure contract.
type column struct {
	info    component.Info
	values  reflect.Value
	added   []tick.Tick
	changed []tick.Tick
}

func newColumn(info component.Info) *column {
	return &column{info: info}
}

func (c *column) sliceType() reflect.Type {
	return reflect.SliceOf(c.info.GoType)
}

// alloc is the first-ever allocation for this column, called once per table
// when its entity capacity grows from zero.
func (c *column) alloc(capacity int) {
	c.values = reflect.MakeSlice(c.sliceType(), capacity, capacity)
	c.added = make([]tick.Tick, capacity)
	c.changed = make([]tick.Tick, capacity)
}

// realloc grows an already-allocated column to newCapacity, preserving the
// live prefix. oldCapacity is unused directly (reflect.Copy only copies
// min(len(dst), len(src))) but kept in the signature to mirror the source's
// two-argument realloc and make the call sites self-documenting.
func (c *column) realloc(oldCapacity, newCapacity int) {
	_ = oldCapacity
	newValues := reflect.MakeSlice(c.sliceType(), newCapacity, newCapacity)
	reflect.Copy(newValues, c.values)
	c.values = newValues

	newAdded := make([]tick.Tick, newCapacity)
	copy(newAdded, c.added)
	c.added = newAdded

	newChanged := make([]tick.Tick, newCapacity)
	copy(newChanged, c.changed)
	c.changed = newChanged
}

// elemAddr returns the address of the row-th element, type-erased.
func (c *column) elemAddr(row int) unsafe.Pointer {
	return c.values.Index(row).Addr().UnsafePointer()
}

func (c *column) getData(row int) ptr.Shared {
	return ptr.NewShared(c.elemAddr(row))
}

func (c *column) getAdded(row int) tick.Tick   { return c.added[row] }
func (c *column) getChanged(row int) tick.Tick { return c.changed[row] }

// typedSlice returns the column's backing storage as a concrete []T,
// truncated to length. The caller is responsible for T matching the type the
// column was registered with; a mismatch panics via the reflect conversion.
func typedSlice[T any](c *column, length int) []T {
	if !c.values.IsValid() {
		return nil
	}
	return c.values.Interface().([]T)[:length]
}

// initItem writes data into an uninitialized cell and stamps both ticks to
// t (a freshly added cell counts as both added and changed).
func (c *column) initItem(row int, data ptr.Owning, t tick.Tick) {
	ptr.MoveBytes(c.elemAddr(row), data.Addr(), c.info.Layout.Size)
	c.added[row] = t
	c.changed[row] = t
}

// replaceItem drops the previous occupant of an initialized cell, then
// writes data in its place and stamps only the changed tick (the cell was
// already "added" at some earlier point).
func (c *column) replaceItem(row int, data ptr.Owning, t tick.Tick) {
	c.dropItem(row)
	ptr.MoveBytes(c.elemAddr(row), data.Addr(), c.info.Layout.Size)
	c.changed[row] = t
}

// removeItem relinquishes an initialized cell to the caller as an Owning
// handle; the caller must eventually drop or read it. The cell itself is left
// byte-for-byte untouched (still "initialized" from the column's point of
// view) until the row is reused by a subsequent init_item.
func (c *column) removeItem(row int) ptr.Owning {
	return ptr.NewOwning(c.elemAddr(row))
}

// dropItem runs the column's Dropper (if any) over row, destroying it in
// place. No-op for component types with a nil Dropper (spec.md's
// `needs_drop::<T>()` short-circuit via component.Info.Drop).
func (c *column) dropItem(row int) {
	if c.info.Drop != nil {
		c.info.Drop(ptr.NewOwning(c.elemAddr(row)))
	}
}

// dropSlice drops every initialized cell in [0, length) — used when a whole
// table is discarded.
func (c *column) dropSlice(length int) {
	if c.info.Drop == nil {
		return
	}
	for i := 0; i < length; i++ {
		c.info.Drop(ptr.NewOwning(c.elemAddr(i)))
	}
}

// swapDropNotLast drops removed, then relocates last's value and ticks into
// removed's slot. Requires removed != last.
func (c *column) swapDropNotLast(removed, last int) {
	c.dropItem(removed)
	c.moveWithinColumn(last, removed)
}

// swapForgetNotLast relocates last's value and ticks into removed's slot
// without dropping whatever removed previously held. Requires removed !=
// last.
func (c *column) swapForgetNotLast(removed, last int) {
	c.moveWithinColumn(last, removed)
}

func (c *column) moveWithinColumn(src, dst int) {
	ptr.MoveBytes(c.elemAddr(dst), c.elemAddr(src), c.info.Layout.Size)
	c.added[dst] = c.added[src]
	c.changed[dst] = c.changed[src]
}

// moveItemTo relocates src's value and ticks from c into dst of other,
// transferring ownership without running any Dropper.
func (c *column) moveItemTo(other *column, src, dst int) {
	ptr.MoveBytes(other.elemAddr(dst), c.elemAddr(src), c.info.Layout.Size)
	other.added[dst] = c.added[src]
	other.changed[dst] = c.changed[src]
}

// checkTicks clamps every added/changed tick in [0, length) per check.
func (c *column) checkTicks(length int, check CheckTicks) {
	for i := 0; i < length; i++ {
		c.added[i] = c.added[i].CheckAndClamp(check.ThisRun)
		c.changed[i] = c.changed[i].CheckAndClamp(check.ThisRun)
	}
}
