package graph

import (
	"fmt"
	"sort"

	"taskforge/internal/types"
)

// Node is one task's view of the dependency graph: its outgoing edges, the
// reverse edges, and its depth in the longest dependency chain.
type Node struct {
	Dependencies []string `json:"dependencies"`
	Dependents   []string `json:"dependents"`
	Level        int      `json:"level"`
}

// Graph maps task id to its node.
type Graph map[string]*Node

// CyclicError reports that level computation found a dependency cycle.
// Validated input should never reach this: treat it as a contract violation
// by the calling layer, not a normal case.
type CyclicError struct {
	TaskID string // A task on the detected cycle
}

func (e *CyclicError) Error() string {
	return fmt.Sprintf("dependency cycle detected at task %s", e.TaskID)
}

// BuildGraph builds the full dependency graph over a task collection:
// dependents are populated by inverting every edge whose target exists in the
// collection (edges to unknown ids are carried in Dependencies but grow no
// dependents entry), and Level is the longest chain of dependencies ending at
// the node: no dependencies means level 0, a node depending on nodes with
// levels L1..Ln has level max(L1..Ln)+1.
//
// Cyclic input yields a *CyclicError instead of a graph.
func BuildGraph(tasks []types.Task) (Graph, error) {
	return buildGraph(tasks, true)
}

// BuildGraphLenient is BuildGraph for callers that want to visualize
// corrupted data: a detected cycle contributes level 0 to the affected branch
// instead of failing.
func BuildGraphLenient(tasks []types.Task) Graph {
	g, _ := buildGraph(tasks, false)
	return g
}

func buildGraph(tasks []types.Task, strict bool) (Graph, error) {
	g := make(Graph, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		deps := make([]string, len(t.Dependencies))
		copy(deps, t.Dependencies)
		g[t.ID] = &Node{Dependencies: deps, Dependents: []string{}}
	}

	// Reverse edges. Input is assumed validated, so an edge to a missing id
	// is simply not recorded.
	for i := range tasks {
		t := &tasks[i]
		for _, dep := range t.Dependencies {
			if node, ok := g[dep]; ok {
				node.Dependents = append(node.Dependents, t.ID)
			}
		}
	}

	levels := make(map[string]int, len(g))
	for id := range g {
		if _, done := levels[id]; done {
			continue
		}
		if err := computeLevels(id, g, levels, strict); err != nil {
			return nil, err
		}
	}
	for id, node := range g {
		node.Level = levels[id]
	}
	return g, nil
}

// computeLevels resolves levels for start and everything reachable from it
// using an explicit post-order stack, so arbitrarily deep chains cannot
// overflow the goroutine stack.
func computeLevels(start string, g Graph, levels map[string]int, strict bool) error {
	type frame struct {
		id   string
		next int
	}

	onStack := map[string]bool{start: true}
	stack := []frame{{id: start}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		node := g[top.id]

		advanced := false
		for top.next < len(node.Dependencies) {
			dep := node.Dependencies[top.next]
			top.next++

			_, exists := g[dep]
			if !exists {
				// Unknown id: treated as a root, contributes level 0.
				levels[dep] = 0
				continue
			}
			if onStack[dep] {
				if strict {
					return &CyclicError{TaskID: dep}
				}
				// Lenient mode mirrors the historical behavior: the
				// revisited branch contributes 0 rather than erroring.
				levels[dep] = 0
				continue
			}
			if _, done := levels[dep]; done {
				continue
			}
			onStack[dep] = true
			stack = append(stack, frame{id: dep})
			advanced = true
			break
		}
		if advanced {
			continue
		}

		// All dependencies resolved: finalize this node.
		level := 0
		if len(node.Dependencies) > 0 {
			maxDep := -1
			for _, dep := range node.Dependencies {
				if l, ok := levels[dep]; ok && l > maxDep {
					maxDep = l
				}
			}
			if maxDep < 0 {
				maxDep = 0
			}
			level = maxDep + 1
		}
		levels[top.id] = level
		onStack[top.id] = false
		stack = stack[:len(stack)-1]
	}
	return nil
}

// Layers returns task ids bucketed by level, levels ascending and ids sorted
// within each bucket. Used by the CLI graph view.
func (g Graph) Layers() [][]string {
	maxLevel := -1
	for _, node := range g {
		if node.Level > maxLevel {
			maxLevel = node.Level
		}
	}
	if maxLevel < 0 {
		return nil
	}
	layers := make([][]string, maxLevel+1)
	for id, node := range g {
		layers[node.Level] = append(layers[node.Level], id)
	}
	for _, layer := range layers {
		sort.Strings(layer)
	}
	return layers
}
