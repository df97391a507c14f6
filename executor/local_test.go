package executor

import (
	"context"
	"testing"
	"time"
)

func TestLocalExecutorTryTick(t *testing.T) {
	e := NewLocalExecutor()
	if e.TryTick() {
		t.Fatal("expected TryTick on empty executor to report false")
	}

	tk := SpawnLocal(e, func() int { return 5 })
	if e.IsEmpty() {
		t.Fatal("expected a queued runnable after SpawnLocal")
	}
	if !e.TryTick() {
		t.Fatal("expected TryTick to find the queued runnable")
	}

	v, err := tk.Wait(context.Background())
	if err != nil || v != 5 {
		t.Fatalf("Wait() = (%d, %v), want (5, nil)", v, err)
	}
}

func TestLocalExecutorTickBlocksUntilContextDone(t *testing.T) {
	e := NewLocalExecutor()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if e.Tick(ctx) {
		t.Fatal("expected Tick to give up once ctx is done")
	}
}

func TestLocalExecutorRunDrainsQueuedWork(t *testing.T) {
	e := NewLocalExecutor()
	const n = 10
	results := make([]*struct{ v int }, 0, n)
	_ = results

	done := make(chan int, n)
	for i := 0; i < n; i++ {
		i := i
		SpawnLocal(e, func() int {
			done <- i
			return i
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go e.Run(ctx)

	seen := 0
	for seen < n {
		select {
		case <-done:
			seen++
		case <-ctx.Done():
			t.Fatalf("timed out after seeing %d/%d runnables", seen, n)
		}
	}
}
