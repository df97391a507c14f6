package taskpool

import (
	"sort"
	"testing"
)

func TestScopeWaitsForAllSpawned(t *testing.T) {
	p := NewBuilder().ThreadNum(4).Build()
	defer p.Close()

	results := Scope(p, func(s *Scope[int]) {
		for i := 0; i < 50; i++ {
			i := i
			s.Spawn(func() int { return i })
		}
	})

	if len(results) != 50 {
		t.Fatalf("len(results) = %d, want 50", len(results))
	}
	sort.Ints(results)
	for i, v := range results {
		if v != i {
			t.Fatalf("results[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestScopeSpawnOnScope(t *testing.T) {
	p := NewBuilder().ThreadNum(2).Build()
	defer p.Close()

	results := Scope(p, func(s *Scope[int]) {
		for i := 0; i < 10; i++ {
			i := i
			s.SpawnOnScope(func() int { return i })
		}
	})

	if len(results) != 10 {
		t.Fatalf("len(results) = %d, want 10", len(results))
	}
	sort.Ints(results)
	for i, v := range results {
		if v != i {
			t.Fatalf("results[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestScopeSpawnOnExternal(t *testing.T) {
	p := NewBuilder().ThreadNum(2).Build()
	defer p.Close()

	// Drive the pool's MainScopeExecutor ourselves, as the host is
	// expected to when using it as a worker-to-main inbox (spec.md §4.4).
	drive := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-drive:
				return
			default:
				p.MainScopeExecutor().TryTick()
			}
		}
	}()

	results := ScopeWithExecutor(p, true, p.MainScopeExecutor(), func(s *Scope[int]) {
		s.SpawnOnExternal(func() int { return 7 })
	})
	close(drive)
	<-done

	if len(results) != 1 || results[0] != 7 {
		t.Fatalf("results = %v, want [7]", results)
	}
}

func TestScopePanicCancelsRemainingAndRepanics(t *testing.T) {
	p := NewBuilder().ThreadNum(4).Build()
	defer p.Close()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic to propagate out of Scope")
		}
		if r != "boom" {
			t.Fatalf("recovered %v, want boom", r)
		}
	}()

	block := make(chan struct{})
	defer close(block)

	Scope(p, func(s *Scope[int]) {
		s.Spawn(func() int {
			panic("boom")
		})
		s.Spawn(func() int {
			<-block
			return 1
		})
	})
}

func TestScopeNestedSpawn(t *testing.T) {
	p := NewBuilder().ThreadNum(4).Build()
	defer p.Close()

	results := Scope(p, func(s *Scope[int]) {
		s.Spawn(func() int {
			s.Spawn(func() int { return 2 })
			return 1
		})
	})

	sort.Ints(results)
	if len(results) != 2 || results[0] != 1 || results[1] != 2 {
		t.Fatalf("results = %v, want [1 2]", results)
	}
}
