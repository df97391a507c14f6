// Package entity implements the thread-safe entity ID allocator: minting,
// freeing and recycling 32-bit entity IDs, with both an in-world (exclusive)
// path and a remote (shared) path for background-goroutine use.
package entity

import "fmt"

// Entity is a 64-bit opaque identity: a 32-bit ID packed with a 32-bit
// generation. ID 0 and math.MaxUint32 are reserved; valid minted IDs live in
// [1, math.MaxUint32-1]. The allocator never touches the generation half —
// bumping it on reuse is the embedder's responsibility (see the host
// lifecycle contract in SPEC_FULL.md).
type Entity uint64

// Placeholder is the all-ones sentinel entity, equivalent to Rust's
// Entity::PLACEHOLDER. It never denotes a live entity.
const Placeholder Entity = 1<<64 - 1

// newEntity packs an ID and generation into an Entity.
func newEntity(id, generation uint32) Entity {
	return Entity(uint64(generation)<<32 | uint64(id))
}

// ID returns the 32-bit identity half.
func (e Entity) ID() uint32 { return uint32(e) }

// Generation returns the 32-bit generation half.
func (e Entity) Generation() uint32 { return uint32(e >> 32) }

// NextGeneration returns e with the same ID and a generation incremented by
// one. Callers must call this (or otherwise bump the generation) before
// treating a recycled ID as a distinct live entity — the allocator
// deliberately never does this itself, since it cannot tell the difference
// between "about to reuse" and "merely peeking".
func (e Entity) NextGeneration() Entity {
	return newEntity(e.ID(), e.Generation()+1)
}

// String renders the entity as "id vN", matching the conventional debug
// format for generational entity IDs.
func (e Entity) String() string {
	return fmt.Sprintf("%d v%d", e.ID(), e.Generation())
}
