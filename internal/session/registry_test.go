package session

import (
	"context"
	"sync"
	"testing"
)

func TestBeginGetEnd(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	id := r.Begin(ctx, "compile_and_run")
	if id == "" {
		t.Fatal("empty session id")
	}
	s, ok := r.Get(id)
	if !ok {
		t.Fatal("session not found after Begin")
	}
	if s.Tool != "compile_and_run" {
		t.Errorf("tool = %q", s.Tool)
	}
	if s.StartedAt.IsZero() {
		t.Error("zero start time")
	}

	r.End(ctx, id)
	if _, ok := r.Get(id); ok {
		t.Error("session still present after End")
	}
}

func TestEndUnknownIDIsNoop(t *testing.T) {
	r := NewRegistry()
	r.End(context.Background(), "missing")
}

func TestActiveSnapshot(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	a := r.Begin(ctx, "compile_and_run")
	b := r.Begin(ctx, "debug_with_gdb")
	if a == b {
		t.Fatal("duplicate session ids")
	}

	active := r.Active()
	if len(active) != 2 {
		t.Fatalf("active = %d, want 2", len(active))
	}

	r.End(ctx, a)
	if len(r.Active()) != 1 {
		t.Error("expected one active session after End")
	}
}

func TestConcurrentBeginEnd(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := r.Begin(ctx, "compare_outputs")
			r.End(ctx, id)
		}()
	}
	wg.Wait()
	if len(r.Active()) != 0 {
		t.Errorf("leaked %d sessions", len(r.Active()))
	}
}
