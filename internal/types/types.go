// Package types defines the core task-planning data model shared by the
// graph, planner, prp, and generation packages. Everything here is plain
// data: validation and selection logic live in the consuming packages.
package types

import (
	"strings"
	"time"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"        // Created, not started
	StatusInProgress TaskStatus = "in_progress" // Actively being worked
	StatusBlocked    TaskStatus = "blocked"     // Flagged blocked by a human or process
	StatusInReview   TaskStatus = "in_review"   // Work done, awaiting review
	StatusDone       TaskStatus = "done"        // Completed
)

// TaskPriority represents task priority levels.
type TaskPriority string

const (
	PriorityCritical TaskPriority = "critical"
	PriorityHigh     TaskPriority = "high"
	PriorityMedium   TaskPriority = "medium"
	PriorityLow      TaskPriority = "low"
)

// Rank returns the sort rank of a priority: critical=0 through low=3.
// Unknown priorities rank after low so malformed data never outranks real work.
func (p TaskPriority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Valid reports whether p is one of the four defined priorities.
func (p TaskPriority) Valid() bool {
	return p.Rank() < 4
}

// Valid reports whether s is one of the five defined statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusBlocked, StatusInReview, StatusDone:
		return true
	}
	return false
}

// ParsePriority parses a priority string case-insensitively.
// Returns (priority, true) on success, (fallback, false) otherwise.
func ParsePriority(s string, fallback TaskPriority) (TaskPriority, bool) {
	p := TaskPriority(strings.ToLower(strings.TrimSpace(s)))
	if p.Valid() {
		return p, true
	}
	return fallback, false
}

// Task is a unit of work owned by a project. Dependencies are ids of other
// tasks in the same project that must reach StatusDone before this task is
// recommended for work.
//
// EstimatedHours and ActualHours are pointers because "not recorded" is
// distinct from zero: analytics treats nil as absent, not as 0h of work.
type Task struct {
	ID           string       `json:"id"`
	ProjectID    string       `json:"projectId"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Status       TaskStatus   `json:"status"`
	Priority     TaskPriority `json:"priority"`
	Dependencies []string     `json:"dependencies"`

	EstimatedHours *float64 `json:"estimatedHours,omitempty"`
	ActualHours    *float64 `json:"actualHours,omitempty"`
	Assignee       string   `json:"assignee,omitempty"`
	Notes          string   `json:"notes,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"` // Set iff Status == done
}

// DependsOn reports whether the task lists id as a direct dependency.
func (t *Task) DependsOn(id string) bool {
	for _, dep := range t.Dependencies {
		if dep == id {
			return true
		}
	}
	return false
}

// Project is consumed, not owned, by this core: its Context blob is passed
// through to the generation prompt unmodified, and PRPContent is updated by
// the calling layer as a side effect of generation.
type Project struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Context    map[string]any `json:"context,omitempty"`
	PRPContent string         `json:"prpContent,omitempty"`
}

// ValidationResult accumulates every violation found so callers can display
// all problems at once. It is returned, never thrown: validation functions
// have no error path.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// ValidResult returns a passing result with no errors.
func ValidResult() ValidationResult {
	return ValidationResult{IsValid: true}
}

// InvalidResult returns a failing result carrying the given messages.
func InvalidResult(errs ...string) ValidationResult {
	return ValidationResult{IsValid: false, Errors: errs}
}

// AITask is a task proposal produced by the generation pipeline, before the
// calling layer persists it as a real Task. Dependencies hold positional
// "task-index-N" tokens referring to earlier entries in the same batch.
type AITask struct {
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Priority       TaskPriority `json:"priority"`
	EstimatedHours *float64     `json:"estimatedHours,omitempty"`
	Dependencies   []string     `json:"dependencies,omitempty"`
}

// GenerationConfig directs the task generation pipeline.
type GenerationConfig struct {
	MaxTasks             int          // Upper bound on returned tasks
	IncludeMilestones    bool         // Ask the model for milestone-style tasks
	DefaultPriority      TaskPriority // Used when the model omits or mangles priority
	EstimateHours        bool         // Attach hour estimates
	GenerateDependencies bool         // Attach task-index-N dependency hints
}

// DefaultGenerationConfig returns the config used when the caller leaves
// fields unset.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		MaxTasks:             20,
		DefaultPriority:      PriorityMedium,
		EstimateHours:        true,
		GenerateDependencies: true,
	}
}

// Normalize fills zero-valued config fields with defaults.
func (c GenerationConfig) Normalize() GenerationConfig {
	def := DefaultGenerationConfig()
	if c.MaxTasks <= 0 {
		c.MaxTasks = def.MaxTasks
	}
	if !c.DefaultPriority.Valid() {
		c.DefaultPriority = def.DefaultPriority
	}
	return c
}
