package table

import (
	"github.com/v-craft/vcgo/ecs/change"
	"github.com/v-craft/vcgo/ecs/tick"
	"github.com/v-craft/vcgo/ptr"
)

// GetData returns a type-erased read-only view of the cell at (row, col).
// The cell must already be initialized.
func (t *Table) GetData(row TableRow, col TableCol) ptr.Shared {
	return t.col(col).getData(int(row))
}

// GetDataPtr returns a type-erased view of column col's first cell, useful
// as a base address for manual stride-based iteration.
func (t *Table) GetDataPtr(col TableCol) ptr.Shared {
	return t.col(col).getData(0)
}

// GetDataSlice returns the full live prefix of column col as a concrete
// []T. The caller must ensure T matches the type col was registered with.
func GetDataSlice[T any](t *Table, col TableCol) []T {
	return typedSlice[T](t.col(col), t.EntityCount())
}

// GetAddedSlice returns the added-tick array for column col, truncated to
// the table's live row count.
func (t *Table) GetAddedSlice(col TableCol) []tick.Tick {
	return t.col(col).added[:t.EntityCount()]
}

// GetChangedSlice returns the changed-tick array for column col, truncated
// to the table's live row count.
func (t *Table) GetChangedSlice(col TableCol) []tick.Tick {
	return t.col(col).changed[:t.EntityCount()]
}

// InitItem writes data into an as-yet-uninitialized cell and stamps both its
// added and changed ticks to now. Ownership of data passes to the table.
func (t *Table) InitItem(row TableRow, col TableCol, data ptr.Owning, now tick.Tick) {
	t.col(col).initItem(int(row), data, now)
}

// ReplaceItem drops the current occupant of an already-initialized cell and
// writes data in its place, stamping only the changed tick. Ownership of
// data passes to the table.
func (t *Table) ReplaceItem(row TableRow, col TableCol, data ptr.Owning, now tick.Tick) {
	t.col(col).replaceItem(int(row), data, now)
}

// RemoveItem relinquishes ownership of an initialized cell to the caller,
// who must eventually drop or read it via the ptr package.
func (t *Table) RemoveItem(row TableRow, col TableCol) ptr.Owning {
	return t.col(col).removeItem(int(row))
}

// GetRef returns a shared, change-tracked, type-erased view of the cell at
// (row, col).
func (t *Table) GetRef(row TableRow, col TableCol, lastRun, thisRun tick.Tick) change.UntypedRef {
	c := t.col(col)
	r := int(row)
	return change.UntypedRef{
		Value: c.getData(r),
		Ticks: change.Ticks{Added: &c.added[r], Changed: &c.changed[r], LastRun: lastRun, ThisRun: thisRun},
	}
}

// GetMut returns an exclusive, change-tracked, type-erased view of the cell
// at (row, col).
func (t *Table) GetMut(row TableRow, col TableCol, lastRun, thisRun tick.Tick) change.UntypedMut {
	c := t.col(col)
	r := int(row)
	return change.UntypedMut{
		Value: ptr.NewMut(c.elemAddr(r)),
		Ticks: change.Ticks{Added: &c.added[r], Changed: &c.changed[r], LastRun: lastRun, ThisRun: thisRun},
	}
}

// GetSliceRef returns a shared, change-tracked, type-erased view of the
// entire column.
func (t *Table) GetSliceRef(col TableCol, lastRun, thisRun tick.Tick) change.UntypedSliceRef {
	c := t.col(col)
	n := t.EntityCount()
	return change.UntypedSliceRef{
		Value: c.getData(0), Length: n,
		Added: c.added[:n], Changed: c.changed[:n],
		LastRun: lastRun, ThisRun: thisRun,
	}
}

// GetSliceMut returns an exclusive, change-tracked, type-erased view of the
// entire column.
func (t *Table) GetSliceMut(col TableCol, lastRun, thisRun tick.Tick) change.UntypedSliceMut {
	c := t.col(col)
	n := t.EntityCount()
	return change.UntypedSliceMut{
		Value: ptr.NewMut(c.elemAddr(0)), Length: n,
		Added: c.added[:n], Changed: c.changed[:n],
		LastRun: lastRun, ThisRun: thisRun,
	}
}
