package main

import (
	"context"
	"testing"
	"time"
)

func TestStartToolBudgetSetsDeadline(t *testing.T) {
	ctx, cancel := StartToolBudget(context.Background(), "tap_screen")
	defer cancel()

	if !HasBudget(ctx) {
		t.Fatal("expected an active budget")
	}
	if CallID(ctx) == "" {
		t.Error("expected a call ID")
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("context has no deadline")
	}
	want := ToolTimeout("tap_screen")
	rem := time.Until(deadline)
	if rem <= 0 || rem > want {
		t.Errorf("deadline %v out of range (0, %v]", rem, want)
	}
}

func TestBudgetsAreIndependentPerCall(t *testing.T) {
	ctx1, cancel1 := StartToolBudget(context.Background(), "device_list")
	defer cancel1()
	ctx2, cancel2 := StartToolBudget(context.Background(), "device_list")
	defer cancel2()

	if CallID(ctx1) == CallID(ctx2) {
		t.Error("two tool calls should have distinct call IDs")
	}
}

func TestRemainingBudgetWithoutBudget(t *testing.T) {
	if got := RemainingBudget(context.Background()); got != defaultBudget {
		t.Errorf("RemainingBudget = %v, want %v", got, defaultBudget)
	}
}

func TestRemainingBudgetFloor(t *testing.T) {
	// An already-expired deadline must still yield the floor, not zero
	// or a negative duration.
	ctx := context.WithValue(context.Background(), deadlineKey{}, time.Now().Add(-time.Second))
	if got := RemainingBudget(ctx); got != deadlineFloor {
		t.Errorf("RemainingBudget = %v, want floor %v", got, deadlineFloor)
	}
}

func TestStageBudget(t *testing.T) {
	ctx := context.WithValue(context.Background(), deadlineKey{}, time.Now().Add(10*time.Second))

	half := StageBudget(ctx, 0.5, 0)
	if half < 4*time.Second || half > 5*time.Second {
		t.Errorf("half budget = %v, want about 5s", half)
	}

	capped := StageBudget(ctx, 0.5, time.Second)
	if capped != time.Second {
		t.Errorf("capped budget = %v, want 1s", capped)
	}

	// Invalid fractions fall back to the whole remaining budget
	full := StageBudget(ctx, -1, 0)
	if full < 9*time.Second {
		t.Errorf("invalid fraction budget = %v, want about 10s", full)
	}
}

func TestStageBudgetFloor(t *testing.T) {
	ctx := context.WithValue(context.Background(), deadlineKey{}, time.Now().Add(100*time.Millisecond))
	if got := StageBudget(ctx, 0.01, 0); got != deadlineFloor {
		t.Errorf("StageBudget = %v, want floor %v", got, deadlineFloor)
	}
}

func TestToolTimeoutTable(t *testing.T) {
	if got := ToolTimeout("device_list"); got != 15*time.Second {
		t.Errorf("device_list timeout = %v, want 15s", got)
	}
	if got := ToolTimeout("tap_screen"); got != 5*time.Second {
		t.Errorf("tap_screen timeout = %v, want 5s", got)
	}
	if got := ToolTimeout("never_heard_of_it"); got != defaultToolTimeout {
		t.Errorf("unknown tool timeout = %v, want default %v", got, defaultToolTimeout)
	}
}
