package task_test

import (
	"testing"

	"github.com/wkhere/stackless/internal/task"
)

func TestSpillGrowsAndRefill(t *testing.T) {
	tk := &task.Task{Start: 0}

	if err := task.Spill(tk, 100); err != nil {
		t.Fatalf("Spill: %v", err)
	}
	if tk.Saved != 100 {
		t.Errorf("Saved = %d, want 100", tk.Saved)
	}
	if len(tk.CopyBytes()) != 100 {
		t.Errorf("len(CopyBytes()) = %d, want 100", len(tk.CopyBytes()))
	}

	// A smaller upTo than what's already saved is a no-op.
	if err := task.Spill(tk, 50); err != nil {
		t.Fatalf("Spill (shrink): %v", err)
	}
	if tk.Saved != 100 {
		t.Errorf("Saved = %d after smaller Spill, want unchanged 100", tk.Saved)
	}

	task.Refill(tk)
	if tk.Saved != 0 {
		t.Errorf("Saved = %d after Refill, want 0", tk.Saved)
	}
	if tk.CopyBytes() != nil {
		t.Error("CopyBytes() != nil after Refill")
	}
}

func TestSpillFailureInjection(t *testing.T) {
	tk := &task.Task{Start: 0}
	task.FailNextSpill(true)

	err := task.Spill(tk, 100)
	if err != task.ErrSpillAlloc {
		t.Fatalf("Spill with injected failure = %v, want ErrSpillAlloc", err)
	}
	if tk.Saved != 0 {
		t.Error("a failed Spill must not have mutated Saved")
	}

	// The injected failure is one-shot.
	if err := task.Spill(tk, 100); err != nil {
		t.Fatalf("Spill after injected failure consumed = %v, want nil", err)
	}
}
