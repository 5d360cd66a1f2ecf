// Package planner answers "what should be worked on next" and derives
// summary statistics over a project's task collection. Like the graph
// package, everything here is a pure function of the snapshot it is given.
package planner

import (
	"sort"

	"taskforge/internal/types"
)

// SelectNext picks the single best task to start, or nil when nothing is
// eligible.
//
// Eligibility: done tasks are out; in_progress tasks are never recommended
// (one active task at a time per recommendation, not a global lock); blocked
// tasks are out only when excludeBlocked is set, since the blocked status is
// a human-applied label independent of dependency completion. What remains
// must have every dependency resolved to a done task.
//
// Candidates are ordered by priority rank ascending, ties broken by earliest
// CreatedAt (FIFO).
func SelectNext(tasks []types.Task, excludeBlocked bool) *types.Task {
	byID := make(map[string]*types.Task, len(tasks))
	for i := range tasks {
		byID[tasks[i].ID] = &tasks[i]
	}

	var eligible []*types.Task
	for i := range tasks {
		t := &tasks[i]
		switch t.Status {
		case types.StatusDone, types.StatusInProgress:
			continue
		case types.StatusBlocked:
			if excludeBlocked {
				continue
			}
		}
		if !dependenciesMet(t, byID) {
			continue
		}
		eligible = append(eligible, t)
	}
	if len(eligible) == 0 {
		return nil
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		ri, rj := eligible[i].Priority.Rank(), eligible[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return eligible[i].CreatedAt.Before(eligible[j].CreatedAt)
	})
	return eligible[0]
}

// dependenciesMet reports whether every dependency id resolves to a done task.
// A dependency that does not resolve at all leaves the task ineligible.
func dependenciesMet(t *types.Task, byID map[string]*types.Task) bool {
	for _, depID := range t.Dependencies {
		dep, ok := byID[depID]
		if !ok {
			return false
		}
		if dep.Status != types.StatusDone {
			return false
		}
	}
	return true
}
