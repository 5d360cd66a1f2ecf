package planner

import (
	"testing"
	"time"

	"taskforge/internal/types"
)

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func mkTask(id string, status types.TaskStatus, priority types.TaskPriority, createdOffset int, deps ...string) types.Task {
	t := types.Task{
		ID:           id,
		ProjectID:    "p1",
		Title:        id,
		Status:       status,
		Priority:     priority,
		Dependencies: deps,
		CreatedAt:    baseTime.Add(time.Duration(createdOffset) * time.Minute),
		UpdatedAt:    baseTime,
	}
	if status == types.StatusDone {
		done := t.CreatedAt.Add(time.Hour)
		t.CompletedAt = &done
	}
	return t
}

// scenarioTasks builds the canonical selection scenario: a finished task, a
// blocked critical task with no dependencies, an active task, plain todos,
// a todo whose dependency is satisfied, and a critical todo gated behind
// unfinished work.
func scenarioTasks() []types.Task {
	return []types.Task{
		mkTask("done-high", types.StatusDone, types.PriorityHigh, 0),
		mkTask("blocked-critical", types.StatusBlocked, types.PriorityCritical, 1),
		mkTask("wip-medium", types.StatusInProgress, types.PriorityMedium, 2),
		mkTask("todo-high", types.StatusTodo, types.PriorityHigh, 3),
		mkTask("todo-medium", types.StatusTodo, types.PriorityMedium, 4),
		mkTask("todo-high-ready", types.StatusTodo, types.PriorityHigh, 5, "done-high"),
		mkTask("todo-critical-gated", types.StatusTodo, types.PriorityCritical, 6, "wip-medium"),
	}
}

func TestSelectNextIncludingBlocked(t *testing.T) {
	got := SelectNext(scenarioTasks(), false)
	if got == nil {
		t.Fatal("expected a selection")
	}
	// The blocked critical task has no unmet dependencies, so with blocked
	// tasks allowed it wins on priority.
	if got.ID != "blocked-critical" {
		t.Errorf("SelectNext = %s, want blocked-critical", got.ID)
	}
}

func TestSelectNextExcludingBlocked(t *testing.T) {
	got := SelectNext(scenarioTasks(), true)
	if got == nil {
		t.Fatal("expected a selection")
	}
	// The gated critical task is ineligible; of the two eligible high tasks
	// the earlier-created one wins the tie.
	if got.ID != "todo-high" {
		t.Errorf("SelectNext = %s, want todo-high", got.ID)
	}
}

func TestSelectNextSkipsInProgress(t *testing.T) {
	tasks := []types.Task{
		mkTask("wip", types.StatusInProgress, types.PriorityCritical, 0),
		mkTask("todo", types.StatusTodo, types.PriorityLow, 1),
	}
	got := SelectNext(tasks, false)
	if got == nil || got.ID != "todo" {
		t.Errorf("SelectNext = %v, want todo", got)
	}
}

func TestSelectNextUnmetDependency(t *testing.T) {
	tasks := []types.Task{
		mkTask("dep", types.StatusTodo, types.PriorityLow, 0),
		mkTask("gated", types.StatusTodo, types.PriorityCritical, 1, "dep"),
	}
	got := SelectNext(tasks, false)
	if got == nil || got.ID != "dep" {
		t.Errorf("SelectNext = %v, want dep", got)
	}
}

func TestSelectNextUnresolvableDependency(t *testing.T) {
	tasks := []types.Task{
		mkTask("gated", types.StatusTodo, types.PriorityCritical, 0, "missing"),
	}
	if got := SelectNext(tasks, false); got != nil {
		t.Errorf("SelectNext = %s, want nil for unresolvable dependency", got.ID)
	}
}

func TestSelectNextFIFOTieBreak(t *testing.T) {
	tasks := []types.Task{
		mkTask("second", types.StatusTodo, types.PriorityHigh, 10),
		mkTask("first", types.StatusTodo, types.PriorityHigh, 5),
	}
	got := SelectNext(tasks, false)
	if got == nil || got.ID != "first" {
		t.Errorf("SelectNext = %v, want first (earliest createdAt)", got)
	}
}

func TestSelectNextEmpty(t *testing.T) {
	if got := SelectNext(nil, false); got != nil {
		t.Errorf("SelectNext(nil) = %v, want nil", got)
	}
	tasks := []types.Task{mkTask("d", types.StatusDone, types.PriorityHigh, 0)}
	if got := SelectNext(tasks, false); got != nil {
		t.Errorf("SelectNext(all done) = %v, want nil", got)
	}
}

func TestSelectNextInReviewEligible(t *testing.T) {
	// in_review is neither done nor in_progress, so it remains a candidate.
	tasks := []types.Task{
		mkTask("review", types.StatusInReview, types.PriorityHigh, 0),
		mkTask("todo", types.StatusTodo, types.PriorityMedium, 1),
	}
	got := SelectNext(tasks, true)
	if got == nil || got.ID != "review" {
		t.Errorf("SelectNext = %v, want review", got)
	}
}
