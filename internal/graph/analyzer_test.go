package graph

import (
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"taskforge/internal/types"
)

func TestBuildGraphLevels(t *testing.T) {
	tasks := []types.Task{
		task("a", "p1"),
		task("b", "p1", "a"),
		task("c", "p1", "b"),
		task("d", "p1", "a", "c"),
		task("e", "p1"),
	}

	g, err := BuildGraph(tasks)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}

	wantLevels := map[string]int{"a": 0, "b": 1, "c": 2, "d": 3, "e": 0}
	for id, want := range wantLevels {
		if got := g[id].Level; got != want {
			t.Errorf("level(%s) = %d, want %d", id, got, want)
		}
	}
}

func TestBuildGraphDependents(t *testing.T) {
	tasks := []types.Task{
		task("a", "p1"),
		task("b", "p1", "a"),
		task("c", "p1", "a"),
	}

	g, err := BuildGraph(tasks)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}

	want := Graph{
		"a": {Dependencies: []string{}, Dependents: []string{"b", "c"}, Level: 0},
		"b": {Dependencies: []string{"a"}, Dependents: []string{}, Level: 1},
		"c": {Dependencies: []string{"a"}, Dependents: []string{}, Level: 1},
	}
	if diff := cmp.Diff(want, g); diff != "" {
		t.Errorf("graph mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildGraphUnknownDependencyHasNoDependentsEntry(t *testing.T) {
	tasks := []types.Task{
		task("a", "p1", "ghost"),
	}

	g, err := BuildGraph(tasks)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if _, ok := g["ghost"]; ok {
		t.Error("unknown dependency must not become a node")
	}
	// The edge itself is preserved on the depending node.
	if len(g["a"].Dependencies) != 1 {
		t.Errorf("dependencies = %v", g["a"].Dependencies)
	}
}

func TestBuildGraphCyclicInputFails(t *testing.T) {
	tasks := []types.Task{
		task("a", "p1", "b"),
		task("b", "p1", "a"),
	}

	_, err := BuildGraph(tasks)
	if err == nil {
		t.Fatal("expected error on cyclic input")
	}
	var cyc *CyclicError
	if !errors.As(err, &cyc) {
		t.Fatalf("error = %T, want *CyclicError", err)
	}
	if cyc.TaskID != "a" && cyc.TaskID != "b" {
		t.Errorf("CyclicError.TaskID = %q, want a node on the cycle", cyc.TaskID)
	}
}

func TestBuildGraphLenientDegradesOnCycle(t *testing.T) {
	tasks := []types.Task{
		task("a", "p1", "b"),
		task("b", "p1", "a"),
		task("c", "p1"),
	}

	g := BuildGraphLenient(tasks)
	if g == nil {
		t.Fatal("lenient build must always return a graph")
	}
	if g["c"].Level != 0 {
		t.Errorf("level(c) = %d, want 0", g["c"].Level)
	}
}

func TestBuildGraphDeepChain(t *testing.T) {
	// Deep enough that a recursive implementation would be at risk; the
	// explicit stack must handle it and assign level == position.
	const depth = 20000
	tasks := make([]types.Task, depth)
	tasks[0] = task("t0", "p1")
	for i := 1; i < depth; i++ {
		tasks[i] = task(id(i), "p1", id(i-1))
	}

	g, err := BuildGraph(tasks)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if got := g[id(depth-1)].Level; got != depth-1 {
		t.Errorf("deep chain level = %d, want %d", got, depth-1)
	}
}

func id(i int) string {
	return "t" + strconv.Itoa(i)
}

func TestLayers(t *testing.T) {
	tasks := []types.Task{
		task("a", "p1"),
		task("b", "p1"),
		task("c", "p1", "a"),
	}
	g, err := BuildGraph(tasks)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}

	layers := g.Layers()
	want := [][]string{{"a", "b"}, {"c"}}
	if diff := cmp.Diff(want, layers); diff != "" {
		t.Errorf("layers mismatch (-want +got):\n%s", diff)
	}
}
