package graph

import (
	"strings"
	"testing"

	"taskforge/internal/types"
)

func task(id, project string, deps ...string) types.Task {
	return types.Task{
		ID:           id,
		ProjectID:    project,
		Status:       types.StatusTodo,
		Priority:     types.PriorityMedium,
		Dependencies: deps,
	}
}

func hasError(result types.ValidationResult, substr string) bool {
	for _, e := range result.Errors {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestValidateEmptyDependencies(t *testing.T) {
	all := []types.Task{task("t1", "p1")}
	result := ValidateDependencies("t1", nil, all)
	if !result.IsValid {
		t.Errorf("empty dependency set should be trivially valid: %+v", result)
	}
}

func TestValidateSelfDependency(t *testing.T) {
	all := []types.Task{task("t1", "p1")}
	result := ValidateDependencies("t1", []string{"t1"}, all)
	if result.IsValid {
		t.Fatal("self-dependency should be invalid")
	}
	if !hasError(result, "Task cannot depend on itself") {
		t.Errorf("missing self-dependency error: %v", result.Errors)
	}
}

func TestValidateUnknownDependency(t *testing.T) {
	all := []types.Task{task("t1", "p1")}
	result := ValidateDependencies("t1", []string{"ghost"}, all)
	if result.IsValid {
		t.Fatal("unknown dependency should be invalid")
	}
	if !hasError(result, "Dependency task ghost not found") {
		t.Errorf("missing not-found error: %v", result.Errors)
	}
}

func TestValidateCrossProjectDependency(t *testing.T) {
	all := []types.Task{
		task("t1", "p1"),
		task("other", "p2"),
	}
	result := ValidateDependencies("t1", []string{"other"}, all)
	if result.IsValid {
		t.Fatal("cross-project dependency should be invalid")
	}
	if !hasError(result, "Dependency task other is not in the same project") {
		t.Errorf("missing cross-project error: %v", result.Errors)
	}
}

func TestValidateDirectCycle(t *testing.T) {
	// t2 already depends on t1; proposing t1 -> t2 closes the loop.
	all := []types.Task{
		task("t1", "p1"),
		task("t2", "p1", "t1"),
	}
	result := ValidateDependencies("t1", []string{"t2"}, all)
	if result.IsValid {
		t.Fatal("direct cycle should be invalid")
	}
	if !hasError(result, "Circular dependency detected") {
		t.Errorf("missing circular error: %v", result.Errors)
	}
}

func TestValidateTransitiveCycle(t *testing.T) {
	// t3 -> t2 -> t1 exists; proposing t1 -> t3 closes a 3-cycle.
	all := []types.Task{
		task("t1", "p1"),
		task("t2", "p1", "t1"),
		task("t3", "p1", "t2"),
	}
	result := ValidateDependencies("t1", []string{"t3"}, all)
	if !hasError(result, "Circular dependency detected") {
		t.Errorf("missing circular error: %v", result.Errors)
	}
}

func TestValidateCycleFlaggedOnce(t *testing.T) {
	// Two distinct cycles through t1; the flag appears exactly once.
	all := []types.Task{
		task("t1", "p1"),
		task("t2", "p1", "t1"),
		task("t3", "p1", "t1"),
	}
	result := ValidateDependencies("t1", []string{"t2", "t3"}, all)
	count := 0
	for _, e := range result.Errors {
		if e == "Circular dependency detected" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("circular flag count = %d, want 1; errors: %v", count, result.Errors)
	}
}

func TestValidateAcyclicChain(t *testing.T) {
	all := []types.Task{
		task("t1", "p1"),
		task("t2", "p1", "t1"),
		task("t3", "p1"),
	}
	result := ValidateDependencies("t3", []string{"t2"}, all)
	if !result.IsValid {
		t.Errorf("acyclic proposal should be valid: %v", result.Errors)
	}
}

func TestValidateProposedReplacesExistingEdges(t *testing.T) {
	// t1 currently depends on t2 (a cycle with t2 -> t1 would exist), but the
	// proposal replaces t1's edges with nothing objectionable.
	all := []types.Task{
		task("t1", "p1", "t2"),
		task("t2", "p1", "t1"),
		task("t3", "p1"),
	}
	result := ValidateDependencies("t1", []string{"t3"}, all)
	if !result.IsValid {
		t.Errorf("replacing the offending edge should validate: %v", result.Errors)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	all := []types.Task{
		task("t1", "p1"),
		task("foreign", "p2"),
	}
	result := ValidateDependencies("t1", []string{"t1", "ghost", "foreign"}, all)
	if len(result.Errors) < 3 {
		t.Errorf("expected all violations collected, got %v", result.Errors)
	}
}

func TestValidateNewTaskInheritsProject(t *testing.T) {
	// taskID not yet in the collection: project checks still apply against
	// the snapshot's project.
	all := []types.Task{
		task("existing", "p1"),
		task("foreign", "p2"),
	}
	result := ValidateDependencies("brand-new", []string{"foreign"}, all)
	if !hasError(result, "is not in the same project") {
		t.Errorf("expected cross-project error for new task: %v", result.Errors)
	}
}
