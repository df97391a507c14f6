package taskpool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestSpawnRunsOnWorker(t *testing.T) {
	p := NewBuilder().ThreadNum(4).Build()
	defer p.Close()

	const n = 500
	var sum atomic.Int64

	results := make(chan int, n)
	for i := 0; i < n; i++ {
		i := i
		tk := Spawn(p, func() int {
			sum.Add(int64(i))
			return i
		})
		go func() {
			v, err := tk.Wait(context.Background())
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results <- v
		}()
	}

	seen := make(map[int]bool, n)
	for i := 0; i < n; i++ {
		select {
		case v := <-results:
			if seen[v] {
				t.Fatalf("duplicate result %d", v)
			}
			seen[v] = true
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for spawned tasks")
		}
	}

	want := int64(n * (n - 1) / 2)
	if got := sum.Load(); got != want {
		t.Fatalf("sum = %d, want %d", got, want)
	}
}

func TestSpawnLocalNeedsMainExecutorTicked(t *testing.T) {
	p := NewBuilder().ThreadNum(1).Build()
	defer p.Close()

	tk := SpawnLocal(p, func() int { return 42 })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := tk.Wait(ctx); err == nil {
		t.Fatal("expected Wait to time out before MainLocalExecutor is ticked")
	}

	if !p.MainLocalExecutor().TryTick() {
		t.Fatal("expected a pending runnable on MainLocalExecutor")
	}

	v, err := tk.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if v != 42 {
		t.Fatalf("v = %d, want 42", v)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	p := NewBuilder().ThreadNum(2).Build()
	p.Close()
	p.Close() // must not panic or deadlock
}
