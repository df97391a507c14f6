package ptr

import (
	"testing"
	"unsafe"
)

type closeableComponent struct {
	closed *bool
}

func (c closeableComponent) Close() error {
	*c.closed = true
	return nil
}

func TestSharedAs(t *testing.T) {
	x := 8
	p := SharedOf(&x)
	if got := *As[int](p); got != 8 {
		t.Fatalf("As[int] = %d, want 8", got)
	}
}

func TestMutAsWrites(t *testing.T) {
	x := 8
	p := MutOf(&x)
	*MutAs[int](p) += 2
	if x != 10 {
		t.Fatalf("x = %d, want 10", x)
	}
}

func TestOwningReadConsumesValue(t *testing.T) {
	s := "hello"
	p := NewOwning(unsafe.Pointer(&s))
	got := Read[string](p)
	if got != "hello" {
		t.Fatalf("Read = %q, want hello", got)
	}
}

func TestOwningWrite(t *testing.T) {
	var s string
	p := NewOwning(unsafe.Pointer(&s))
	Write(p, "world")
	if s != "world" {
		t.Fatalf("s = %q, want world", s)
	}
}

func TestDropperForRunsClose(t *testing.T) {
	closed := false
	c := closeableComponent{closed: &closed}
	drop := DropperFor[closeableComponent]()
	if drop == nil {
		t.Fatal("expected non-nil dropper for closeable type")
	}
	p := NewOwning(unsafe.Pointer(&c))
	DropAs[closeableComponent](p, drop)
	if !closed {
		t.Fatal("expected Close to run via DropAs")
	}
}

func TestDropperForPlainType(t *testing.T) {
	if d := DropperFor[int](); d != nil {
		t.Fatal("expected nil dropper for plain int")
	}
}

func TestMovingPartialMove(t *testing.T) {
	type pair struct {
		A, B string
	}
	v := pair{A: "x", B: "y"}
	m := MovingOf(&v)
	bField := PartialMove(m, func(p *pair) *string { return &p.B })
	if got := bField.Read(); got != "y" {
		t.Fatalf("PartialMove read = %q, want y", got)
	}
}
