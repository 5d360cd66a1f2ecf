package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"taskforge/internal/types"
)

const systemPrompt = "You are a project planning expert. Ground every task only in the provided requirement content. Output only valid JSON."

// buildPrompt assembles the structured natural-language prompt: requirement
// content, serialized project context, and the config's directives about
// which fields to include or omit.
func buildPrompt(content string, project types.Project, cfg types.GenerationConfig) string {
	var b strings.Builder

	b.WriteString("REQUIREMENT CONTENT (PRP):\n")
	b.WriteString(content)
	b.WriteString("\n\n")

	if len(project.Context) > 0 {
		if ctx, err := json.Marshal(project.Context); err == nil {
			b.WriteString("PROJECT CONTEXT:\n")
			b.Write(ctx)
			b.WriteString("\n\n")
		}
	}

	b.WriteString("DIRECTIVES:\n")
	fmt.Fprintf(&b, "- Produce at most %d tasks.\n", cfg.MaxTasks)
	if cfg.IncludeMilestones {
		b.WriteString("- Include milestone-style tasks marking major completion points.\n")
	} else {
		b.WriteString("- Do not include milestone-style tasks; only concrete work items.\n")
	}
	fmt.Fprintf(&b, "- Priority must be one of critical, high, medium, low; when unsure use %s.\n", cfg.DefaultPriority)
	if cfg.EstimateHours {
		b.WriteString("- Include a numeric estimatedHours field between 0.5 and 40 per task.\n")
	} else {
		b.WriteString("- Omit hour estimates entirely.\n")
	}
	if cfg.GenerateDependencies {
		b.WriteString("- Express dependencies as tokens of the form task-index-N, where N is the zero-based index of the prerequisite task in this list.\n")
	} else {
		b.WriteString("- Omit the dependencies field entirely.\n")
	}

	return fmt.Sprintf(`%s

Break the requirement content into discrete development tasks.

Output a JSON array, one object per task:
[
  {
    "title": "Short imperative title",
    "description": "What to do and how to verify it",
    "priority": "critical|high|medium|low",
    "estimatedHours": 4,
    "dependencies": ["task-index-0"]
  }
]

Output ONLY the JSON array:`, b.String())
}
