package generation

import (
	"strings"

	"taskforge/internal/types"
)

// fallbackKeywords mark a requirement line as actionable. Narrower than the
// content-gate signal set: "validate" is not a line-level extraction trigger.
var fallbackKeywords = []string{
	"implement", "create", "build", "code", "function",
	"class", "component", "api", "test",
}

// fallbackReminder is appended to every extracted description so the
// resulting tasks still carry a verification step.
const fallbackReminder = "Validate the result against the PRP before marking this task complete."

// fallbackTasks deterministically extracts tasks from requirement content:
// one task per line carrying an implementation signal, priority bumped for
// lines flagged critical or mandatory, bounded by cfg.MaxTasks. It succeeds
// on every input, including empty content (yielding an empty batch).
func (p *Pipeline) fallbackTasks(content string, cfg types.GenerationConfig) []types.AITask {
	tasks := make([]types.AITask, 0, cfg.MaxTasks)

	for _, line := range strings.Split(content, "\n") {
		if len(tasks) >= cfg.MaxTasks {
			break
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		if !containsAny(lower, fallbackKeywords) {
			continue
		}

		title := truncateTitle(trimmed)

		priority := types.PriorityMedium
		if strings.Contains(lower, "critical") || strings.Contains(lower, "must") {
			priority = types.PriorityHigh
		}

		task := types.AITask{
			Title:       title,
			Description: trimmed + " " + fallbackReminder,
			Priority:    priority,
		}
		if cfg.EstimateHours {
			estimate := float64(p.rng.Intn(8) + 1) // 1..8 hours
			task.EstimatedHours = &estimate
		}
		tasks = append(tasks, task)
	}
	return tasks
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
