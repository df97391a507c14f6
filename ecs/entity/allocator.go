package entity

import (
	"sync/atomic"
)

// localCap is the size of the per-allocator local buffers that amortize
// synchronization with the shared free list and fresh counter.
const localCap = 127

// maxEntities is the largest ID the fresh counter will mint; spec.md
// reserves math.MaxUint32 (all-ones) for Placeholder.
const maxEntities = ^uint32(0)

// freshAllocator mints IDs that have never been used before, sequentially
// starting from 1 (0 is reserved).
type freshAllocator struct {
	next atomic.Uint32
}

func newFreshAllocator() *freshAllocator {
	fa := &freshAllocator{}
	fa.next.Store(1)
	return fa
}

func (fa *freshAllocator) Count() uint32 {
	return fa.next.Load() - 1
}

func (fa *freshAllocator) Alloc() Entity {
	index := fa.next.Add(1) - 1
	if index == maxEntities {
		panic("entity: too many entities")
	}
	return newEntity(index, 0)
}

// freshRange is a contiguous span of freshly minted IDs.
type freshRange struct {
	next, end uint32
}

func (r *freshRange) Len() uint32 { return r.end - r.next }

func (r *freshRange) Next() (Entity, bool) {
	if r.next >= r.end {
		return 0, false
	}
	id := r.next
	r.next++
	return newEntity(id, 0), true
}

func (fa *freshAllocator) AllocMany(count uint32) *freshRange {
	if count == 0 {
		return &freshRange{}
	}
	start := fa.next.Add(count) - count
	if start > maxEntities-count {
		panic("entity: too many entities")
	}
	return &freshRange{next: start, end: start + count}
}

// sharedAllocator is the state shared between an EntityAllocator and every
// RemoteAllocator spawned from it.
type sharedAllocator struct {
	free     *freeList
	fresh    *freshAllocator
	isClosed atomic.Bool
}

// RemoteAllocator is an entity allocator handle usable without exclusive
// access to the owning world — typically stashed in a background goroutine.
// It only ever recycles from the shared free list via a lock-free CAS loop;
// when the free list is empty it falls back to the fresh counter, which is
// itself a plain atomic and therefore safe to share (spec.md §4.1, Open
// Question resolutions).
type RemoteAllocator struct {
	shared *sharedAllocator
}

// IsClosed reports whether the owning EntityAllocator has been closed (via
// Close). Entities allocated after that point are still distinct, type-safe
// values, but callers should treat them as orphaned and check this flag
// before trusting them.
func (r RemoteAllocator) IsClosed() bool {
	return r.shared.isClosed.Load()
}

// IsConnectedTo reports whether r was spawned from alloc.
func (r RemoteAllocator) IsConnectedTo(alloc *EntityAllocator) bool {
	return r.shared == alloc.shared
}

// Alloc allocates one entity, preferring a recycled ID from the shared free
// list and falling back to the fresh counter.
func (r RemoteAllocator) Alloc() Entity {
	if e, ok := r.shared.free.RemoteAlloc(); ok {
		return e
	}
	return r.shared.fresh.Alloc()
}

// localBuffer holds the per-EntityAllocator fast-path buffers. Free and
// alloc buffers are kept separate (rather than one combined buffer) so that
// entities freed and immediately reallocated don't thrash generation
// counters on a single hot ID.
type localBuffer struct {
	free  []Entity
	alloc []Entity
}

// EntityAllocator is the primary, exclusively-owned entity allocator bound
// to one world. Entities minted from two different EntityAllocators must
// never be mixed. The allocator never touches an entity's generation: the
// embedder owns that bookkeeping (host lifecycle contract).
type EntityAllocator struct {
	shared *sharedAllocator
	local  localBuffer
}

// New constructs an empty EntityAllocator.
func New() *EntityAllocator {
	return &EntityAllocator{
		shared: &sharedAllocator{
			free:  newFreeList(),
			fresh: newFreshAllocator(),
		},
		local: localBuffer{
			free:  make([]Entity, 0, localCap),
			alloc: make([]Entity, 0, localCap),
		},
	}
}

// BuildRemote spawns a RemoteAllocator usable without holding a.
func (a *EntityAllocator) BuildRemote() RemoteAllocator {
	return RemoteAllocator{shared: a.shared}
}

// IsConnectedTo reports whether remote was spawned from a.
func (a *EntityAllocator) IsConnectedTo(remote RemoteAllocator) bool {
	return a.shared == remote.shared
}

// Close marks a as closed: any RemoteAllocator spawned from it will report
// IsClosed() == true from this point on. The host lifecycle contract
// requires calling this before the EntityAllocator itself is discarded.
func (a *EntityAllocator) Close() {
	a.shared.isClosed.Store(true)
}

// Free recycles a single entity for future reuse. It may sit in a local
// buffer of capacity 127 before being flushed to the shared free list.
func (a *EntityAllocator) Free(e Entity) {
	if len(a.local.free) == cap(a.local.free) {
		a.shared.free.Free(a.local.free)
		a.local.free = a.local.free[:0]
	}
	a.local.free = append(a.local.free, e)
}

// FreeMany recycles a batch of entities, bypassing the local buffer and
// appending directly to the shared free list.
func (a *EntityAllocator) FreeMany(entities []Entity) {
	a.shared.free.Free(entities)
}

// AllocMut allocates a single entity via the thread-unshared fast path: it
// checks the local buffer first, refilling it from the shared free list
// (then the fresh counter) only when empty.
func (a *EntityAllocator) AllocMut() Entity {
	if n := len(a.local.alloc); n > 0 {
		e := a.local.alloc[n-1]
		a.local.alloc = a.local.alloc[:n-1]
		return e
	}
	return a.allocMutSlow()
}

func (a *EntityAllocator) allocMutSlow() Entity {
	const count = localCap + 1
	reused := a.shared.free.AllocMany(count)
	stillNeed := count - reused.Len()
	fresh := a.shared.fresh.AllocMany(stillNeed)

	ret, retOK := reused.Next()
	for {
		e, ok := reused.Next()
		if !ok {
			break
		}
		a.local.alloc = append(a.local.alloc, e)
	}
	if !retOK {
		ret, retOK = fresh.Next()
	}
	for {
		e, ok := fresh.Next()
		if !ok {
			break
		}
		a.local.alloc = append(a.local.alloc, e)
	}
	if !retOK {
		panic("entity: allocator slow path produced no entity")
	}
	return ret
}

// Alloc allocates one entity via a shared reference, safe to call
// concurrently with other Alloc/AllocMany/RemoteAllocator.Alloc calls (but
// never concurrently with AllocMut/Free/FreeMany on the same allocator,
// which require exclusive access).
func (a *EntityAllocator) Alloc() Entity {
	if e, ok := a.shared.free.Alloc(); ok {
		return e
	}
	return a.shared.fresh.Alloc()
}

// AllocIter is returned by AllocMany; it must be fully drained or the
// entities it would have yielded are permanently leaked (never freed,
// never recycled). A Warn-level leak diagnostic is not wired here — the
// caller is expected to always range over it to completion, mirroring the
// `must_use`-style contract of the source iterator.
type AllocIter struct {
	reused *freeBufferIter
	fresh  *freshRange
}

// Len reports how many entities remain to be yielded.
func (it *AllocIter) Len() uint32 {
	return it.reused.Len() + it.fresh.Len()
}

// Next returns the next entity, preferring recycled IDs over fresh ones.
func (it *AllocIter) Next() (Entity, bool) {
	if e, ok := it.reused.Next(); ok {
		return e, true
	}
	return it.fresh.Next()
}

// AllocMany batch-allocates count entities. The returned iterator must be
// drained completely; any entity not yielded via Next is leaked.
func (a *EntityAllocator) AllocMany(count uint32) *AllocIter {
	reused := a.shared.free.AllocMany(count)
	stillNeed := count - reused.Len()
	fresh := a.shared.fresh.AllocMany(stillNeed)
	return &AllocIter{reused: reused, fresh: fresh}
}

// Allocated returns the total number of entity IDs ever minted by the fresh
// counter (i.e. not counting recycling).
func (a *EntityAllocator) Allocated() uint32 {
	return a.shared.fresh.Count()
}

// Recycled returns the current number of entities sitting in the shared free
// list, not counting anything still parked in a's local buffer.
func (a *EntityAllocator) Recycled() uint32 {
	return a.shared.free.Count()
}
