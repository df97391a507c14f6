package table

import (
	"testing"
	"unsafe"

	"github.com/v-craft/vcgo/ecs/component"
	"github.com/v-craft/vcgo/ecs/entity"
	"github.com/v-craft/vcgo/ecs/tick"
	"github.com/v-craft/vcgo/ptr"
)

type position struct{ X, Y, Z float64 }

func buildTable(t *testing.T, reg *component.Registry, infos ...component.Info) *Table {
	t.Helper()
	_ = reg
	b := NewBuilder(len(infos))
	for _, info := range infos {
		b.Insert(info)
	}
	return b.Build()
}

func infoFor[T any](reg *component.Registry) component.Info {
	id := component.Register[T](reg)
	info, _ := reg.Lookup(id)
	return info
}

func sortedInfos(infos []component.Info) []component.Info {
	out := append([]component.Info(nil), infos...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].ID < out[j-1].ID; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func newEntityFor(id uint32) entity.Entity {
	a := entity.New()
	for i := uint32(0); i < id; i++ {
		a.Alloc()
	}
	return a.Alloc()
}

// TestTableAllocateAndSwapRemove checks the row-accounting invariant: after
// any sequence of allocate/swap_remove, each column's live prefix length
// equals the table's entity count (spec.md §8, property 4).
func TestTableAllocateAndSwapRemove(t *testing.T) {
	reg := component.NewRegistry()
	posInfo := infoFor[position](reg)

	tbl := buildTable(t, reg, posInfo)
	col, ok := tbl.GetTableCol(posInfo.ID)
	if !ok {
		t.Fatal("expected position column")
	}

	a := entity.New()
	e0, e1, e2 := a.Alloc(), a.Alloc(), a.Alloc()

	r0 := tbl.Allocate(e0)
	tbl.InitItem(r0, col, ownDataOf(position{1, 1, 1}), 1)
	r1 := tbl.Allocate(e1)
	tbl.InitItem(r1, col, ownDataOf(position{2, 2, 2}), 1)
	r2 := tbl.Allocate(e2)
	tbl.InitItem(r2, col, ownDataOf(position{3, 3, 3}), 1)

	if tbl.EntityCount() != 3 {
		t.Fatalf("entity count = %d, want 3", tbl.EntityCount())
	}

	moved := tbl.SwapRemoveAndDrop(r0)
	if moved == nil || moved.Entity != e2 {
		t.Fatalf("expected e2 to be swapped into row 0, got %+v", moved)
	}
	if tbl.EntityCount() != 2 {
		t.Fatalf("entity count after remove = %d, want 2", tbl.EntityCount())
	}

	slice := GetDataSlice[position](tbl, col)
	if len(slice) != tbl.EntityCount() {
		t.Fatalf("data slice len %d != entity count %d", len(slice), tbl.EntityCount())
	}
	if slice[0] != (position{3, 3, 3}) {
		t.Fatalf("row 0 after swap-remove = %+v, want the former row-2 value", slice[0])
	}
}

// ownDataOf boxes value on the heap and wraps its address as an Owning
// handle, for use as InitItem/ReplaceItem payloads in tests.
func ownDataOf[T any](value T) ptr.Owning {
	v := new(T)
	*v = value
	return ptr.NewOwning(unsafe.Pointer(v))
}

// TestTableCrossMove reproduces scenario T1: build two tables, A with
// {a, b, c}, B with {a, c, d}; allocate 3 entities in A; move row 1 with
// move_to_and_drop_missing; verify B's row count is 1, A's row count is 2,
// B's d column is left uninitialized for the caller to fill in.
func TestTableCrossMove(t *testing.T) {
	reg := component.NewRegistry()
	type a struct{ V int }
	type bComp struct{ V int }
	type c struct{ V int }
	type d struct{ V int }

	aInfo := infoFor[a](reg)
	bInfo := infoFor[bComp](reg)
	cInfo := infoFor[c](reg)
	dInfo := infoFor[d](reg)

	tableA := buildTable(t, reg, sortedInfos([]component.Info{aInfo, bInfo, cInfo})...)
	tableB := buildTable(t, reg, sortedInfos([]component.Info{aInfo, cInfo, dInfo})...)

	aColA, _ := tableA.GetTableCol(aInfo.ID)
	bColA, _ := tableA.GetTableCol(bInfo.ID)
	cColA, _ := tableA.GetTableCol(cInfo.ID)

	alloc := entity.New()
	e0, e1, e2 := alloc.Alloc(), alloc.Alloc(), alloc.Alloc()

	r0 := tableA.Allocate(e0)
	tableA.InitItem(r0, aColA, ownDataOf(a{1}), 1)
	tableA.InitItem(r0, bColA, ownDataOf(bComp{1}), 1)
	tableA.InitItem(r0, cColA, ownDataOf(c{1}), 1)

	r1 := tableA.Allocate(e1)
	tableA.InitItem(r1, aColA, ownDataOf(a{2}), 1)
	tableA.InitItem(r1, bColA, ownDataOf(bComp{2}), 1)
	tableA.InitItem(r1, cColA, ownDataOf(c{2}), 1)

	r2 := tableA.Allocate(e2)
	tableA.InitItem(r2, aColA, ownDataOf(a{3}), 1)
	tableA.InitItem(r2, bColA, ownDataOf(bComp{3}), 1)
	tableA.InitItem(r2, cColA, ownDataOf(c{3}), 1)

	tableA.MoveToAndDropMissing(r1, tableB)

	if tableB.EntityCount() != 1 {
		t.Fatalf("tableB entity count = %d, want 1", tableB.EntityCount())
	}
	if tableA.EntityCount() != 2 {
		t.Fatalf("tableA entity count = %d, want 2", tableA.EntityCount())
	}

	aColB, _ := tableB.GetTableCol(aInfo.ID)
	bValues := GetDataSlice[a](tableB, aColB)
	if bValues[0].V != 2 {
		t.Fatalf("moved a.V = %d, want 2 (from entity e1)", bValues[0].V)
	}

	if _, ok := tableB.GetTableCol(bInfo.ID); ok {
		t.Fatal("tableB should have no b column at all")
	}

	dColB, ok := tableB.GetTableCol(dInfo.ID)
	if !ok {
		t.Fatal("expected d column in tableB")
	}
	_ = dColB // present but intentionally left uninitialized by the move
}

func TestCheckTicksClamps(t *testing.T) {
	reg := component.NewRegistry()
	posInfo := infoFor[position](reg)
	tbl := buildTable(t, reg, posInfo)
	col, _ := tbl.GetTableCol(posInfo.ID)

	e := newEntityFor(0)
	row := tbl.Allocate(e)
	tbl.InitItem(row, col, ownDataOf(position{}), 5)

	thisRun := tick.Tick(tick.MaxDelta + 1000)
	tbl.CheckTicksAll(CheckTicks{ThisRun: thisRun})

	got := tbl.GetAdded(row, col)
	if age := thisRun - got; uint32(age) > tick.MaxDelta {
		t.Fatalf("added tick not clamped: age %d exceeds MaxDelta %d", age, tick.MaxDelta)
	}
}

// TestSignatureStableForSameComponentSet checks that two tables built from
// the same component set, inserted in the same (required) ascending order,
// produce identical signatures, and that adding a component changes it.
func TestSignatureStableForSameComponentSet(t *testing.T) {
	reg := component.NewRegistry()
	aInfo := infoFor[position](reg)
	bInfo := infoFor[int](reg)

	infos := sortedInfos([]component.Info{aInfo, bInfo})

	t1 := buildTable(t, reg, infos...)
	t2 := buildTable(t, reg, infos...)
	if t1.Signature() != t2.Signature() {
		t.Fatalf("signatures differ for identical archetypes: %d vs %d", t1.Signature(), t2.Signature())
	}

	onlyA := buildTable(t, reg, aInfo)
	if onlyA.Signature() == t1.Signature() {
		t.Fatal("expected different signature for a different component set")
	}
}
