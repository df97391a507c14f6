package tick

import (
	"math"
	"testing"
)

// TestNewerThan reproduces spec.md's T2-adjacent tick-ordering properties.
func TestNewerThan(t *testing.T) {
	cases := []struct {
		tick, lastRun, thisRun Tick
		want                   bool
	}{
		{tick: 5, lastRun: 0, thisRun: 5, want: true},
		{tick: 0, lastRun: 5, thisRun: 10, want: false},
		{tick: 5, lastRun: 5, thisRun: 10, want: false},
		{tick: 6, lastRun: 5, thisRun: 10, want: true},
	}
	for _, c := range cases {
		if got := c.tick.NewerThan(c.lastRun, c.thisRun); got != c.want {
			t.Errorf("Tick(%d).NewerThan(%d, %d) = %v, want %v", c.tick, c.lastRun, c.thisRun, got, c.want)
		}
	}
}

func TestCheckAndClampNoOpWithinRange(t *testing.T) {
	this := Tick(1000)
	got := Tick(990).CheckAndClamp(this)
	if got != 990 {
		t.Fatalf("got %d, want unchanged 990", got)
	}
}

func TestCheckAndClampPreservesOrdering(t *testing.T) {
	this := Tick(math.MaxUint32 - 10)
	older := Tick(0)
	newer := Tick(5)

	olderClamped := older.CheckAndClamp(this)
	newerClamped := newer.CheckAndClamp(this)

	if !newerClamped.NewerThan(olderClamped, this) {
		t.Fatalf("clamping reversed relative order: older=%d newer=%d", olderClamped, newerClamped)
	}
}
