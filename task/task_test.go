package task

import (
	"context"
	"testing"
	"time"
)

func inlineSchedule(r Runnable) { r() }

func TestTaskWaitReturnsResult(t *testing.T) {
	tk := Spawn(inlineSchedule, func() int { return 42 })
	v, err := tk.Wait(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 {
		t.Fatalf("got %d, want 42", v)
	}
}

func TestTaskPanicReraisedOnWait(t *testing.T) {
	tk := Spawn(inlineSchedule, func() int { panic("boom") })

	defer func() {
		r := recover()
		if r != "boom" {
			t.Fatalf("recovered %v, want \"boom\"", r)
		}
	}()
	tk.Wait(context.Background())
	t.Fatal("expected Wait to panic")
}

func TestTaskCancelBeforeStartSkipsBody(t *testing.T) {
	ran := false
	var queued Runnable
	tk := Spawn(func(r Runnable) { queued = r }, func() int {
		ran = true
		return 1
	})

	tk.Cancel()
	queued() // simulate an executor finally getting around to it

	_, err := tk.Wait(context.Background())
	if err != ErrCancelled {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
	if ran {
		t.Fatal("canceled task body should not have run")
	}
}

func TestTaskWaitRespectsContext(t *testing.T) {
	var queued Runnable
	tk := Spawn(func(r Runnable) { queued = r }, func() int { return 1 })
	_ = queued // never invoked: task never actually runs

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := tk.Wait(ctx)
	if err != context.DeadlineExceeded {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
}

func TestFallibleTaskCancelReportsNotOK(t *testing.T) {
	var queued Runnable
	ft := SpawnFallible(func(r Runnable) { queued = r }, func() int { return 9 })
	ft.Cancel()
	queued()

	_, ok := ft.Wait(context.Background())
	if ok {
		t.Fatal("expected canceled FallibleTask to report ok=false")
	}
}

func TestFallibleTaskSuccess(t *testing.T) {
	ft := SpawnFallible(inlineSchedule, func() string { return "done" })
	v, ok := ft.Wait(context.Background())
	if !ok || v != "done" {
		t.Fatalf("Wait() = (%q, %v), want (\"done\", true)", v, ok)
	}
}
