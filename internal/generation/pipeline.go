// Package generation turns validated requirement content into a bounded,
// ordered list of task proposals. It prompts the external completion service
// once and degrades to deterministic keyword extraction on any failure:
// the pipeline has no externally observable failure mode.
package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"taskforge/internal/logging"
	"taskforge/internal/perception"
	"taskforge/internal/types"
)

// OriginKind tags where a generated batch came from.
type OriginKind string

const (
	OriginAI       OriginKind = "ai"       // Parsed from the completion service
	OriginFallback OriginKind = "fallback" // Deterministic keyword extraction
)

// Origin records provenance so downstream reporting can distinguish degraded
// output from the real thing.
type Origin struct {
	Kind   OriginKind `json:"kind"`
	Reason string     `json:"reason,omitempty"` // Populated for fallback batches
}

// Result is a generated task batch plus its provenance.
type Result struct {
	Tasks  []types.AITask `json:"tasks"`
	Origin Origin         `json:"origin"`
}

const maxTitleLength = 100

// Estimates from the model are clamped into a sane working range.
const (
	minEstimateHours = 0.5
	maxEstimateHours = 40
)

// depTokenPattern accepts only positional dependency hints the batch itself
// can resolve.
var depTokenPattern = regexp.MustCompile(`^task-index-\d+$`)

// Pipeline generates task proposals from requirement content.
type Pipeline struct {
	client perception.LLMClient
	rng    *rand.Rand
}

// NewPipeline creates a pipeline backed by the given completion client.
func NewPipeline(client perception.LLMClient) *Pipeline {
	return &Pipeline{
		client: client,
		rng:    rand.New(rand.NewSource(rand.Int63())),
	}
}

// NewPipelineWithSeed creates a pipeline whose fallback estimates are
// reproducible. Used by tests.
func NewPipelineWithSeed(client perception.LLMClient, seed int64) *Pipeline {
	return &Pipeline{
		client: client,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Generate runs the linear pipeline: build prompt, one completion attempt,
// tolerant array extraction, per-element normalization, truncation. Every
// failure along the way routes to the deterministic fallback; the caller
// always receives a well-formed result.
func (p *Pipeline) Generate(ctx context.Context, content string, project types.Project, cfg types.GenerationConfig) Result {
	cfg = cfg.Normalize()

	if p.client == nil {
		return p.fallbackResult(content, cfg, "no completion client configured")
	}

	prompt := buildPrompt(content, project, cfg)
	logging.GenerationDebug("prompting completion service (content=%d bytes, maxTasks=%d)", len(content), cfg.MaxTasks)

	raw, err := p.client.CompleteWithSystem(ctx, systemPrompt, prompt)
	if err != nil {
		return p.fallbackResult(content, cfg, fmt.Sprintf("completion request failed: %v", err))
	}

	arr, ok := perception.ExtractJSONArray(raw)
	if !ok {
		return p.fallbackResult(content, cfg, "response contained no JSON array")
	}

	var rawTasks []rawTask
	if err := json.Unmarshal([]byte(arr), &rawTasks); err != nil {
		return p.fallbackResult(content, cfg, fmt.Sprintf("response JSON did not parse: %v", err))
	}

	tasks := normalizeTasks(rawTasks, cfg)
	if len(tasks) == 0 {
		return p.fallbackResult(content, cfg, "response parsed to an empty task list")
	}

	logging.Generation("generated %d tasks from completion service", len(tasks))
	return Result{Tasks: tasks, Origin: Origin{Kind: OriginAI}}
}

func (p *Pipeline) fallbackResult(content string, cfg types.GenerationConfig, reason string) Result {
	logging.Generation("falling back to keyword extraction: %s", reason)
	return Result{
		Tasks:  p.fallbackTasks(content, cfg),
		Origin: Origin{Kind: OriginFallback, Reason: reason},
	}
}

// rawTask is the schema-lenient shape of one model-proposed task. Fields the
// model mistypes are coerced or dropped during normalization rather than
// failing the batch.
type rawTask struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Priority       string   `json:"priority"`
	EstimatedHours any      `json:"estimatedHours"`
	Dependencies   []string `json:"dependencies"`
}

// normalizeTasks validates and repairs each element, then truncates the
// batch to the configured bound.
func normalizeTasks(raw []rawTask, cfg types.GenerationConfig) []types.AITask {
	tasks := make([]types.AITask, 0, len(raw))
	for i, r := range raw {
		if len(tasks) >= cfg.MaxTasks {
			break
		}

		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = fmt.Sprintf("Generated task %d", i+1)
		}
		title = truncateTitle(title)

		description := strings.TrimSpace(r.Description)
		if description == "" {
			description = title
		}

		priority, _ := types.ParsePriority(r.Priority, cfg.DefaultPriority)

		task := types.AITask{
			Title:       title,
			Description: description,
			Priority:    priority,
		}

		if cfg.EstimateHours {
			if hours, ok := numericHours(r.EstimatedHours); ok {
				clamped := clamp(hours, minEstimateHours, maxEstimateHours)
				task.EstimatedHours = &clamped
			}
		}

		if cfg.GenerateDependencies {
			for _, dep := range r.Dependencies {
				if depTokenPattern.MatchString(dep) {
					task.Dependencies = append(task.Dependencies, dep)
				}
			}
		}

		tasks = append(tasks, task)
	}
	return tasks
}

// numericHours coerces the model's estimatedHours value, which arrives as
// whatever JSON type the model felt like emitting.
func numericHours(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// truncateTitle caps a title at maxTitleLength characters. Counted in runes
// so multilingual titles are never cut mid-character.
func truncateTitle(title string) string {
	if len(title) <= maxTitleLength {
		return title
	}
	runes := []rune(title)
	if len(runes) <= maxTitleLength {
		return title
	}
	return string(runes[:maxTitleLength])
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
