// Package table implements the dense columnar storage that holds every
// entity's components: one row per entity, one column per component type,
// with per-cell added/changed tick tracking (spec.md §4.2 Table).
package table

import (
	"encoding/binary"
	"log/slog"
	"os"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/v-craft/vcgo/ecs/component"
	"github.com/v-craft/vcgo/ecs/entity"
	"github.com/v-craft/vcgo/ecs/tick"
)

// Signature is a cached fingerprint of a table's sorted ComponentId list —
// its archetype shape. Two tables with the same set of component types
// always hash to the same Signature, since Build only accepts idents in
// ascending order; a registry of archetypes can key off it
// to intern/compare tables by shape in O(1) instead of comparing the full
// idents slice (SPEC_FULL.md §3: xxhash wired into ecs/table).
type Signature uint64

// computeSignature hashes a sorted, deduplicated idents slice with xxhash.
// idents is already required to be sorted (Builder.Build panics otherwise),
// so the hash is a pure function of archetype shape.
func computeSignature(idents []component.ID) Signature {
	h := xxhash.New()
	var buf [4]byte
	for _, id := range idents {
		binary.LittleEndian.PutUint32(buf[:], uint32(id))
		_, _ = h.Write(buf[:])
	}
	return Signature(h.Sum64())
}

// TableRow identifies a row (one entity's worth of components) within a
// single table.
type TableRow uint32

// TableCol identifies a column (one component type) within a single table.
type TableCol uint32

// CheckTicks bundles the parameters for a table-wide tick clamp pass.
type CheckTicks = tick.CheckTicks

// MovedEntity describes an entity whose row index changed as a side effect
// of some other entity's removal or move — a swap-remove relocates whatever
// entity was sitting in the last row into the vacated slot, and the caller
// must update its own entity-to-location index accordingly.
type MovedEntity struct {
	Entity entity.Entity
	NewRow TableRow
}

// Builder assembles a Table from a fixed, sorted set of component columns.
// Mirrors table.rs's TableBuilder.
type Builder struct {
	columns []*column
	idents  []component.ID
}

// NewBuilder creates a builder with pre-sized capacity for columnCount
// columns.
func NewBuilder(columnCount int) *Builder {
	return &Builder{
		columns: make([]*column, 0, columnCount),
		idents:  make([]component.ID, 0, columnCount),
	}
}

// Insert adds a column for the given component. Callers must insert in
// strictly ascending ComponentId order; Build panics otherwise.
func (b *Builder) Insert(info component.Info) TableCol {
	index := TableCol(len(b.columns))
	b.columns = append(b.columns, newColumn(info))
	b.idents = append(b.idents, info.ID)
	return index
}

// Build consumes the builder and constructs the final Table.
//
// Panics if the inserted component IDs are not strictly sorted and unique —
// the invariant the binary search in GetTableCol relies on.
func (b *Builder) Build() *Table {
	if !sort.SliceIsSorted(b.idents, func(i, j int) bool { return b.idents[i] < b.idents[j] }) {
		panic("table: component ids must be inserted in ascending order")
	}
	for i := 1; i < len(b.idents); i++ {
		if b.idents[i] == b.idents[i-1] {
			panic("table: duplicate component id in builder")
		}
	}
	return &Table{
		columns:   b.columns,
		idents:    b.idents,
		signature: computeSignature(b.idents),
	}
}

// Table is a dense columnar storage block for ECS components: one row per
// entity, one column per component type.
type Table struct {
	columns   []*column
	idents    []component.ID
	entities  []entity.Entity
	signature Signature
}

// Signature returns t's cached archetype-shape fingerprint.
func (t *Table) Signature() Signature { return t.signature }

// Capacity returns the table's current row capacity.
func (t *Table) Capacity() int { return cap(t.entities) }

// EntityCount returns the number of rows currently in use.
func (t *Table) EntityCount() int { return len(t.entities) }

// Entities returns the live entity slice, indexed by TableRow.
func (t *Table) Entities() []entity.Entity { return t.entities }

// Close drops every initialized cell in every column. The host lifecycle
// contract requires calling this before discarding a Table, exactly as
// EntityAllocator.Close must be called before discarding an allocator —
// otherwise component types with a non-nil Dropper never get to clean up.
func (t *Table) Close() {
	n := t.EntityCount()
	for _, c := range t.columns {
		c.dropSlice(n)
	}
}

// Clear drops every initialized cell and truncates the table back to zero
// rows, keeping its current capacity (a supplemented convenience beyond the
// operations spec.md names, useful for pooled/reset world patterns).
func (t *Table) Clear() {
	n := t.EntityCount()
	for _, c := range t.columns {
		c.dropSlice(n)
	}
	t.entities = t.entities[:0]
}

func growCapacity(oldCapacity int) int {
	if oldCapacity == 0 {
		return 4
	}
	return oldCapacity * 2
}

// abortOnPanic is the deferred recovery installed around multi-column
// growth: if any single column's realloc panics partway through, the other
// columns are left with mismatched capacities relative to entities, which is
// unrecoverable — the only sound response is to abort the process rather
// than let the caller catch the panic and keep using a corrupted table
// (spec.md §4.2: "AbortOnPanic guard").
func abortOnPanic() {
	if r := recover(); r != nil {
		slog.Error("table: panic during column growth, aborting", "panic", r)
		os.Exit(2)
	}
}

// reserveOne grows entities (and, in lock-step, every column) by one slot's
// worth of headroom. Cold path: only called when the table is at capacity.
func (t *Table) reserveOne() {
	defer abortOnPanic()

	oldCapacity := cap(t.entities)
	grown := make([]entity.Entity, len(t.entities), growCapacity(oldCapacity))
	copy(grown, t.entities)
	t.entities = grown
	newCapacity := cap(t.entities)

	for _, c := range t.columns {
		if oldCapacity == 0 {
			c.alloc(newCapacity)
		} else {
			c.realloc(oldCapacity, newCapacity)
		}
	}
}

// Allocate reserves a new row for entity and returns it. entity must be
// unique within this table; the returned row stays valid until the entity is
// removed or moved out.
func (t *Table) Allocate(e entity.Entity) TableRow {
	if len(t.entities) == cap(t.entities) {
		t.reserveOne()
	}
	t.entities = append(t.entities, e)
	return TableRow(len(t.entities) - 1)
}

// GetTableCol finds the column index for a component ID via binary search
// over the sorted idents slice.
func (t *Table) GetTableCol(id component.ID) (TableCol, bool) {
	idx := sort.Search(len(t.idents), func(i int) bool { return t.idents[i] >= id })
	if idx < len(t.idents) && t.idents[idx] == id {
		return TableCol(idx), true
	}
	return 0, false
}

// GetTableRow finds the row index for an entity via linear search. This is
// O(n) and should be avoided on hot paths — store the TableRow returned by
// Allocate instead.
func (t *Table) GetTableRow(key entity.Entity) (TableRow, bool) {
	for i, e := range t.entities {
		if e == key {
			return TableRow(i), true
		}
	}
	return 0, false
}

func (t *Table) col(index TableCol) *column {
	return t.columns[index]
}

// GetAdded returns the added tick for the cell at (row, col).
func (t *Table) GetAdded(row TableRow, col TableCol) tick.Tick {
	return t.col(col).getAdded(int(row))
}

// GetChanged returns the changed tick for the cell at (row, col).
func (t *Table) GetChanged(row TableRow, col TableCol) tick.Tick {
	return t.col(col).getChanged(int(row))
}

// CheckTicksAll clamps every added/changed tick in every column, preventing
// wrap-around ambiguity after long-running worlds (spec.md §7: "call
// Table::check_ticks periodically").
func (t *Table) CheckTicksAll(check CheckTicks) {
	n := t.EntityCount()
	for _, c := range t.columns {
		c.checkTicks(n, check)
	}
}
