// Package graph implements dependency validation and graph analysis over a
// project's task collection. All functions are pure: they operate on an
// already-loaded snapshot and never touch storage or the network.
package graph

import (
	"fmt"

	"taskforge/internal/types"
)

// Validation messages. The exact strings are part of the contract: callers
// surface them to users verbatim.
const (
	msgSelfDependency  = "Task cannot depend on itself"
	msgCircular        = "Circular dependency detected"
	fmtDepNotFound     = "Dependency task %s not found"
	fmtDepWrongProject = "Dependency task %s is not in the same project"
)

// ValidateDependencies checks a proposed dependency set for a task against
// the project's task collection. Every applicable violation is collected into
// a single result; nothing is mutated and nothing is thrown.
//
// Cycle detection treats the proposed edges as already applied for taskID
// while every other task keeps its existing dependencies. A single circular
// flag is raised no matter how many cycles exist.
func ValidateDependencies(taskID string, proposed []string, all []types.Task) types.ValidationResult {
	if len(proposed) == 0 {
		return types.ValidResult()
	}

	var errs []string

	byID := make(map[string]*types.Task, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}

	// The collection is a single project's snapshot; a task being created
	// inherits that project.
	ownProject := ""
	if self, ok := byID[taskID]; ok {
		ownProject = self.ProjectID
	} else if len(all) > 0 {
		ownProject = all[0].ProjectID
	}

	for _, dep := range proposed {
		if dep == taskID {
			errs = append(errs, msgSelfDependency)
			continue
		}
		depTask, ok := byID[dep]
		if !ok {
			errs = append(errs, fmt.Sprintf(fmtDepNotFound, dep))
			continue
		}
		if ownProject != "" && depTask.ProjectID != ownProject {
			errs = append(errs, fmt.Sprintf(fmtDepWrongProject, dep))
		}
	}

	if hasCycle(taskID, proposed, byID) {
		errs = append(errs, msgCircular)
	}

	if len(errs) > 0 {
		return types.InvalidResult(errs...)
	}
	return types.ValidResult()
}

// hasCycle runs an iterative depth-first traversal from start, maintaining an
// explicit recursion stack. Revisiting a node that is still on the stack
// means the proposed edges close a cycle.
func hasCycle(start string, proposed []string, byID map[string]*types.Task) bool {
	edges := func(id string) []string {
		if id == start {
			return proposed
		}
		if t, ok := byID[id]; ok {
			return t.Dependencies
		}
		return nil
	}

	type frame struct {
		id   string
		next int // index of the next edge to follow
	}

	onStack := map[string]bool{start: true}
	visited := map[string]bool{start: true}
	stack := []frame{{id: start}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		deps := edges(top.id)
		if top.next >= len(deps) {
			onStack[top.id] = false
			stack = stack[:len(stack)-1]
			continue
		}
		dep := deps[top.next]
		top.next++

		if onStack[dep] {
			return true
		}
		if visited[dep] {
			continue
		}
		visited[dep] = true
		onStack[dep] = true
		stack = append(stack, frame{id: dep})
	}
	return false
}
