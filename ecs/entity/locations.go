package entity

import (
	"github.com/brentp/intintmap"
)

// locationSentinel marks a removed slot. intintmap has no delete primitive,
// so a removal overwrites the value with this sentinel rather than shrinking
// the map; Get treats it as "absent".
const locationSentinel = int64(-1)

// Location is where a live entity's components currently live: which table,
// and which row within it. Tables themselves are addressed by a small
// integer the embedder assigns (spec.md doesn't mandate a particular table
// identity scheme beyond "a separate entity-to-row map" — TableID is ours to
// define, kept deliberately minimal).
type Location struct {
	Table uint32
	Row   uint32
}

func encodeLocation(l Location) int64 {
	return int64(uint64(l.Table)<<32 | uint64(l.Row))
}

func decodeLocation(v int64) Location {
	u := uint64(v)
	return Location{Table: uint32(u >> 32), Row: uint32(u)}
}

// Locations is the entity-ID-to-row index the host is expected to maintain
// alongside its tables (spec.md §4.2: "callers are expected to re-read
// locations from a separate entity-to-row map" after a swap-remove). It is
// backed by github.com/brentp/intintmap rather than a built-in Go map: entity
// IDs are dense small integers, exactly the access pattern intintmap's open
// addressing is built for, and this index is on the hot path of every
// archetype move.
type Locations struct {
	m *intintmap.Map
}

// NewLocations constructs an entity-location index sized for an expected
// population of capacityHint live entities.
func NewLocations(capacityHint int) *Locations {
	if capacityHint < 16 {
		capacityHint = 16
	}
	return &Locations{m: intintmap.New(capacityHint, 0.75)}
}

// Set records (or overwrites) where entity e currently lives.
func (l *Locations) Set(e Entity, loc Location) {
	l.m.Put(int64(e.ID()), encodeLocation(loc))
}

// Get returns entity e's current location, and false if e is not tracked
// (never inserted, or removed via Delete).
func (l *Locations) Get(e Entity) (Location, bool) {
	v, ok := l.m.Get(int64(e.ID()))
	if !ok || v == locationSentinel {
		return Location{}, false
	}
	return decodeLocation(v), true
}

// Delete stops tracking e. Safe to call even if e was never tracked.
func (l *Locations) Delete(e Entity) {
	l.m.Put(int64(e.ID()), locationSentinel)
}
