// Package ptr provides four flavors of type-erased handle used by the ecs
// storage layer to move component bytes around without knowing their static
// type: a shared read-only view, an exclusive mutable view, an owning view
// whose holder is responsible for a single drop, and a typed moving view used
// to destructure a value field by field.
//
// Go has no borrow checker, so the lifetime discipline the names imply is a
// convention enforced by callers, not the compiler: a Shared/Mut/Owning value
// must not outlive the backing allocation it was carved from. Handles hold
// only an address; the typed accessors (As, MutAs, OwningAs, Read, Write)
// derive T's Layout and assert alignment before dereferencing, mirroring the panic-in-debug/UB-in-release contract of the
// source design.
package ptr

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Layout describes the size and alignment of an erased value, analogous to
// Rust's core::alloc::Layout. It carries no type identity; callers are
// expected to already know (out of band) what type a given byte address
// holds.
type Layout struct {
	Size  uintptr
	Align uintptr
}

// LayoutOf derives a Layout from a concrete Go type using reflection.
func LayoutOf[T any]() Layout {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		// T is an interface type instantiated with a nil value; fall back to
		// the interface type's own layout, which reflect can't infer from a
		// nil interface value.
		t = reflect.TypeFor[T]()
	}
	return Layout{Size: t.Size(), Align: uintptr(t.Align())}
}

// aligned reports whether addr satisfies the alignment requirement align,
// which must be a power of two.
func aligned(addr uintptr, align uintptr) bool {
	return addr&(align-1) == 0
}

// debugAssertAligned panics if addr is not aligned for layout. It is always
// checked: Go has no cheap way to compile this out per build, and the cost is
// negligible next to the reflect/unsafe traffic already on this path.
func debugAssertAligned(addr uintptr, layout Layout, typeName string) {
	if !aligned(addr, layout.Align) {
		panic(fmt.Sprintf("ptr: address %#x is not aligned to %d for type %s", addr, layout.Align, typeName))
	}
}

// Shared is a fully type-erased, read-only view into a value. It is the
// counterpart of Rust's `&dyn Any`: the holder promises the pointee will not
// be mutated or freed for as long as the Shared value is in use.
type Shared struct {
	addr unsafe.Pointer
}

// NewShared wraps an arbitrary non-nil address as a Shared view.
func NewShared(addr unsafe.Pointer) Shared {
	if addr == nil {
		panic("ptr: NewShared requires a non-nil address")
	}
	return Shared{addr: addr}
}

// SharedOf returns a Shared view over val's address.
func SharedOf[T any](val *T) Shared {
	return NewShared(unsafe.Pointer(val))
}

// Addr returns the raw address, discarding type erasure.
func (p Shared) Addr() unsafe.Pointer { return p.addr }

// IsAligned reports whether p is aligned for layout.
func (p Shared) IsAligned(layout Layout) bool {
	return aligned(uintptr(p.addr), layout.Align)
}

// As reinterprets p as a *T. The caller must ensure p actually addresses a
// live T and that T's layout matches what was used to produce p.
func As[T any](p Shared) *T {
	debugAssertAligned(uintptr(p.addr), LayoutOf[T](), reflect.TypeFor[T]().String())
	return (*T)(p.addr)
}

// Mut is a fully type-erased, exclusive mutable view into a value. Unlike
// Shared, the caller may write through it, but must still not free or
// re-type the pointee while any Mut derived from it is alive.
type Mut struct {
	addr unsafe.Pointer
}

// NewMut wraps an arbitrary non-nil address as a Mut view.
func NewMut(addr unsafe.Pointer) Mut {
	if addr == nil {
		panic("ptr: NewMut requires a non-nil address")
	}
	return Mut{addr: addr}
}

// MutOf returns a Mut view over val's address.
func MutOf[T any](val *T) Mut {
	return NewMut(unsafe.Pointer(val))
}

// Addr returns the raw address, discarding type erasure.
func (p Mut) Addr() unsafe.Pointer { return p.addr }

// Shared narrows p to a read-only Shared view over the same address.
func (p Mut) Shared() Shared { return Shared{addr: p.addr} }

// MutAs reinterprets p as a *T, usable for both reads and writes.
func MutAs[T any](p Mut) *T {
	debugAssertAligned(uintptr(p.addr), LayoutOf[T](), reflect.TypeFor[T]().String())
	return (*T)(p.addr)
}

// Dropper erases a type's destructor: given the address of a live value it
// runs whatever cleanup that type requires (closing a handle, zeroing secret
// bytes, ...) and leaves the value logically destroyed. A nil Dropper means
// the type needs no cleanup beyond letting the garbage collector reclaim it.
type Dropper func(Owning)

// DropperFor returns a Dropper for T if, and only if, T carries behavior that
// must run before the value is overwritten or discarded: here, that means T
// implements `Close() error`. Pure data types that rely
// solely on garbage collection get a nil Dropper, matching the source
// design's `needs_drop::<T>()` short-circuit.
func DropperFor[T any]() Dropper {
	if _, ok := any(*new(T)).(interface{ Close() error }); ok {
		return func(o Owning) {
			if closer, ok := any(*OwningAs[T](o)).(interface{ Close() error }); ok {
				_ = closer.Close()
			}
		}
	}
	return nil
}

// Owning is a type-erased handle representing ownership of a value: exactly
// one of DropAs or Read must eventually be called on it, or the value (and
// anything it owns) leaks. Owning never frees the backing memory itself — it
// typically addresses a slot inside a table column — only the pointee's
// destructor, if any.
type Owning struct {
	addr unsafe.Pointer
}

// NewOwning wraps an arbitrary non-nil address as an Owning handle.
func NewOwning(addr unsafe.Pointer) Owning {
	if addr == nil {
		panic("ptr: NewOwning requires a non-nil address")
	}
	return Owning{addr: addr}
}

// Addr returns the raw address, discarding type erasure.
func (p Owning) Addr() unsafe.Pointer { return p.addr }

// Shared narrows p to a read-only Shared view over the same address.
func (p Owning) Shared() Shared { return Shared{addr: p.addr} }

// Mut narrows p to a mutable view over the same address, without consuming
// ownership.
func (p Owning) Mut() Mut { return Mut{addr: p.addr} }

// OwningAs reinterprets p as a *T without consuming ownership; used by a
// Dropper or by code that needs to inspect the value before deciding how to
// finish consuming p.
func OwningAs[T any](p Owning) *T {
	debugAssertAligned(uintptr(p.addr), LayoutOf[T](), reflect.TypeFor[T]().String())
	return (*T)(p.addr)
}

// DropAs runs T's destructor (if any) over the pointee and consumes
// ownership. After this call the address must be treated as uninitialized.
func DropAs[T any](p Owning, drop Dropper) {
	if drop != nil {
		drop(p)
	}
}

// Read consumes ownership of p, copying the pointee out by value. After this
// call the address must be treated as uninitialized; the caller now owns the
// returned T.
func Read[T any](p Owning) T {
	debugAssertAligned(uintptr(p.addr), LayoutOf[T](), reflect.TypeFor[T]().String())
	return *(*T)(p.addr)
}

// Write initializes (or overwrites without dropping the previous value) the
// memory addressed by p with value.
func Write[T any](p Owning, value T) {
	debugAssertAligned(uintptr(p.addr), LayoutOf[T](), reflect.TypeFor[T]().String())
	*(*T)(p.addr) = value
}

// MoveBytes performs a raw, byte-for-byte relocation of size bytes from src
// to dst, with no regard for what type occupies that memory. It is the
// primitive type-erased storage (ecs/table's columns) builds init/replace/
// remove/move operations on top of, since at that layer the static type of
// the cell is already gone.
//
// Component types moved this way must be safely relocatable by a flat byte
// copy — no self-referential pointers into their own fields — the same
// constraint the source design places on anything passed through its raw
// `ptr::copy_nonoverlapping`. Plain data (numbers, fixed arrays, structs of
// those, and ordinary pointers/slices/strings/maps whose referents live
// elsewhere) all satisfy this; self-referential structs do not and must
// never be stored as components.
func MoveBytes(dst, src unsafe.Pointer, size uintptr) {
	if size == 0 {
		return
	}
	copy(unsafe.Slice((*byte)(dst), size), unsafe.Slice((*byte)(src), size))
}

// Moving is a typed handle for relocating a value of known type T to a new
// home without passing it by value, normally used to destructure a struct
// field by field during a cross-table move. Unlike Owning it is generic over
// T, so the Go compiler (not a manual debug assertion) enforces that reads
// and writes agree on type.
type Moving[T any] struct {
	addr *T
}

// MovingOf adopts value as a Moving handle. The caller must not use value
// again through any other path: ownership has moved into the returned
// handle.
func MovingOf[T any](value *T) Moving[T] {
	return Moving[T]{addr: value}
}

// Read takes the value out of m, leaving the source slot logically
// uninitialized.
func (m Moving[T]) Read() T {
	return *m.addr
}

// Addr exposes the underlying address for field-by-field destructuring via
// PartialMove.
func (m Moving[T]) Addr() *T { return m.addr }

// PartialMove extracts a single field out of m given an accessor, returning a
// Moving handle over just that field. Callers must not subsequently read the
// parent m as a whole, since one of its fields has already been relocated
// out from under it.
func PartialMove[T, F any](m Moving[T], field func(*T) *F) Moving[F] {
	return Moving[F]{addr: field(m.addr)}
}
