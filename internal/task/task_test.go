package task

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestEvery_RunsUntilStopped(t *testing.T) {
	var calls atomic.Int32
	p := Every(context.Background(), 5*time.Millisecond, func() { calls.Add(1) })

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("calls = %d after 2s, want >= 3", calls.Load())
		}
		time.Sleep(time.Millisecond)
	}
	p.Stop()

	stopped := calls.Load()
	time.Sleep(30 * time.Millisecond)
	if got := calls.Load(); got != stopped {
		t.Fatalf("calls after Stop = %d, want %d", got, stopped)
	}
}

func TestEvery_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Every(ctx, time.Hour, func() { t.Error("fn called") })
	cancel()

	select {
	case <-p.done:
	case <-time.After(time.Second):
		t.Fatalf("task did not stop after context cancel")
	}
}

func TestDebouncer_RunsLastTriggerOnce(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	got := make(chan int, 10)

	for i := 1; i <= 5; i++ {
		i := i
		d.Trigger(func() { got <- i })
	}

	select {
	case v := <-got:
		if v != 5 {
			t.Fatalf("debounced value = %d, want 5", v)
		}
	case <-time.After(time.Second):
		t.Fatalf("debounced call never ran")
	}
	select {
	case v := <-got:
		t.Fatalf("extra debounced call with %d", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	var ran atomic.Bool
	d.Trigger(func() { ran.Store(true) })
	d.Cancel()

	time.Sleep(40 * time.Millisecond)
	if ran.Load() {
		t.Fatalf("cancelled call ran")
	}
}
