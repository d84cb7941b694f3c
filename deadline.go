package main

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ========================================
// Deadline budgeting
// ========================================
//
// Each tool call starts a single absolute deadline; sub-operations ask
// how much of the budget remains and carve out per-stage slices instead
// of stacking independent timeouts. The deadline travels on the
// context, so concurrent tool calls never see each other's budgets.

type deadlineKey struct{}
type callIDKey struct{}

// deadlineFloor is the smallest budget ever handed to a sub-operation.
// Zero or negative timeouts would fail instantly in confusing ways.
const deadlineFloor = 50 * time.Millisecond

// defaultBudget is assumed when an operation runs outside any tool
// call, e.g. from a test or during startup.
const defaultBudget = 60 * time.Second

// StartToolBudget derives a context carrying an absolute deadline for a
// tool call plus a correlation ID for log lines. The returned cancel
// must be called when the tool finishes.
func StartToolBudget(ctx context.Context, tool string) (context.Context, context.CancelFunc) {
	total := ToolTimeout(tool)
	if total < deadlineFloor {
		total = deadlineFloor
	}
	deadline := time.Now().Add(total)
	ctx = context.WithValue(ctx, deadlineKey{}, deadline)
	ctx = context.WithValue(ctx, callIDKey{}, uuid.NewString())
	return context.WithDeadline(ctx, deadline)
}

// CallID returns the correlation ID for the active tool call, or ""
func CallID(ctx context.Context) string {
	if id, ok := ctx.Value(callIDKey{}).(string); ok {
		return id
	}
	return ""
}

// HasBudget reports whether a tool budget is active on ctx
func HasBudget(ctx context.Context) bool {
	_, ok := ctx.Value(deadlineKey{}).(time.Time)
	return ok
}

// RemainingBudget returns the time left until the active deadline.
// Without an active budget it returns defaultBudget. The result is
// never below deadlineFloor.
func RemainingBudget(ctx context.Context) time.Duration {
	deadline, ok := ctx.Value(deadlineKey{}).(time.Time)
	if !ok {
		return defaultBudget
	}
	rem := time.Until(deadline)
	if rem < deadlineFloor {
		return deadlineFloor
	}
	return rem
}

// StageBudget allocates a slice of the remaining budget for one stage
// of a multi-step operation. fraction is clamped to (0, 1]; cap, when
// positive, bounds the result. The result is never below deadlineFloor.
func StageBudget(ctx context.Context, fraction float64, cap time.Duration) time.Duration {
	if fraction <= 0 || fraction > 1 {
		fraction = 1
	}
	budget := time.Duration(float64(RemainingBudget(ctx)) * fraction)
	if cap > 0 && budget > cap {
		budget = cap
	}
	if budget < deadlineFloor {
		budget = deadlineFloor
	}
	return budget
}
