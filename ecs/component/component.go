// Package component holds the sliver of the (out-of-scope) reflection
// framework that the storage core actually depends on: for every registered
// component type, a Layout and an optional Dropper, addressed by a dense
// small-integer ComponentId. Nothing here attempts type registry, dynamic
// value containers or serde adapters — those live one layer up, outside this
// module's scope.
package component

import (
	"reflect"
	"sync"

	"github.com/segmentio/fasthash/fnv1a"

	"github.com/v-craft/vcgo/ptr"
)

// ID is a dense, small unsigned integer naming a component type. IDs are
// handed out in registration order starting at zero, so a table's idents
// slice (sorted ascending IDs) stays small and cache-friendly regardless of
// how exotic the underlying Go types are.
type ID uint32

// Info is everything the table storage needs to know about a component type,
// without needing the type itself at compile time.
type Info struct {
	ID     ID
	Name   string
	Layout ptr.Layout
	Drop   ptr.Dropper
	GoType reflect.Type
}

// Registry assigns dense ComponentIds to Go types on first sight and caches
// their Layout/Dropper pair. A Registry is safe for concurrent use; the
// embedder typically keeps exactly one alive for the lifetime of a world,
// matching the host lifecycle contract that component identity is stable
// across tables.
type Registry struct {
	mu       sync.RWMutex
	byType   map[reflect.Type]ID
	byFinger map[uint64]reflect.Type
	infos    []Info
}

// NewRegistry constructs an empty component registry.
func NewRegistry() *Registry {
	return &Registry{
		byType:   make(map[reflect.Type]ID),
		byFinger: make(map[uint64]reflect.Type),
	}
}

// Register returns the stable ID for T, assigning a fresh one the first time
// T is seen. The fingerprint used to seed collision detection is an FNV-1a
// hash (github.com/segmentio/fasthash/fnv1a) of the type's package-qualified
// name; the dense ID itself is just the registration index, so the hash only
// ever serves as a fast duplicate-registration guard, never as storage.
func Register[T any](r *Registry) ID {
	t := reflect.TypeFor[T]()

	r.mu.RLock()
	if id, ok := r.byType[t]; ok {
		r.mu.RUnlock()
		return id
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byType[t]; ok {
		return id
	}

	finger := fnv1a.HashString64(t.PkgPath() + "." + t.Name())
	if existing, ok := r.byFinger[finger]; ok && existing != t {
		// Two distinct types hashing to the same fingerprint is astronomically
		// unlikely for FNV-1a-64 over realistic type-name cardinality, but the
		// fingerprint is only ever a diagnostic, never load-bearing, so we just
		// note the collision and move on rather than fail registration.
		finger++
	}

	id := ID(len(r.infos))
	r.byType[t] = id
	r.byFinger[finger] = t
	r.infos = append(r.infos, Info{
		ID:     id,
		Name:   t.String(),
		Layout: ptr.LayoutOf[T](),
		Drop:   ptr.DropperFor[T](),
		GoType: t,
	})
	return id
}

// Lookup returns the Info registered for id, and false if id was never
// assigned by this Registry.
func (r *Registry) Lookup(id ID) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.infos) {
		return Info{}, false
	}
	return r.infos[id], true
}

// IDOf reports the ID previously assigned to T, if any.
func IDOf[T any](r *Registry) (ID, bool) {
	t := reflect.TypeFor[T]()
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byType[t]
	return id, ok
}
