package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"taskforge/internal/generation"
	"taskforge/internal/perception"
	"taskforge/internal/prp"
	"taskforge/internal/types"
)

var (
	genProjectID   string
	genMaxTasks    int
	genMilestones  bool
	genNoEstimates bool
	genNoDeps      bool
	genDryRun      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [prp-file...]",
	Short: "Generate tasks from requirement documents",
	Long: `Reads one or more requirement (PRP) files, validates and sanitizes
their content, and generates a task batch for the project.

The completion service produces the batch when an API key is configured;
otherwise a deterministic keyword-extraction fallback runs. The batch is
persisted unless --dry-run is given, and the project records the combined
requirement content it was generated from.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genProjectID, "project", "p", "", "Target project ID (required)")
	generateCmd.Flags().IntVar(&genMaxTasks, "max-tasks", 0, "Cap the generated batch (0 = configured default)")
	generateCmd.Flags().BoolVar(&genMilestones, "milestones", false, "Ask for milestone tasks as well")
	generateCmd.Flags().BoolVar(&genNoEstimates, "no-estimates", false, "Skip hour estimates")
	generateCmd.Flags().BoolVar(&genNoDeps, "no-deps", false, "Skip dependency suggestions")
	generateCmd.Flags().BoolVar(&genDryRun, "dry-run", false, "Print the batch without persisting it")
	_ = generateCmd.MarkFlagRequired("project")
}

// loadPRPFiles reads, sanitizes, and validates every input file
// concurrently, then joins the contents in argument order.
func loadPRPFiles(paths []string) (string, error) {
	contents := make([]string, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			clean := prp.Sanitize(string(data))
			if result := prp.ValidateContent(clean); !result.IsValid {
				return fmt.Errorf("%s: %s", path, strings.Join(result.Errors, "; "))
			}
			contents[i] = clean
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return strings.Join(contents, "\n\n"), nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if !genDryRun {
		if err := requireWrite(genProjectID); err != nil {
			return err
		}
	}

	content, err := loadPRPFiles(args)
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	project, err := s.GetProject(genProjectID)
	if err != nil {
		return err
	}

	var client perception.LLMClient
	if cfg.LLM.APIKey != "" {
		client = perception.NewChatClientWithConfig(perception.ChatConfig{
			APIKey:    cfg.LLM.APIKey,
			BaseURL:   cfg.LLM.BaseURL,
			Model:     cfg.LLM.Model,
			MaxTokens: cfg.LLM.MaxTokens,
			Timeout:   cfg.GetLLMTimeout(),
		})
	} else {
		logger.Warn("no API key configured, using keyword-extraction fallback")
	}

	genCfg := cfg.GenerationDefaults()
	if genMaxTasks > 0 {
		genCfg.MaxTasks = genMaxTasks
	}
	if genMilestones {
		genCfg.IncludeMilestones = true
	}
	if genNoEstimates {
		genCfg.EstimateHours = false
	}
	if genNoDeps {
		genCfg.GenerateDependencies = false
	}

	result := generation.NewPipeline(client).Generate(cmd.Context(), content, *project, genCfg)
	logger.Info("generated task batch",
		zap.Int("tasks", len(result.Tasks)),
		zap.String("origin", string(result.Origin.Kind)),
		zap.String("reason", result.Origin.Reason))

	tasks := materializeTasks(result.Tasks, genProjectID)

	fmt.Printf("Generated %d tasks (origin: %s", len(tasks), result.Origin.Kind)
	if result.Origin.Reason != "" {
		fmt.Printf(", reason: %s", result.Origin.Reason)
	}
	fmt.Println(")")
	for i, t := range tasks {
		line := fmt.Sprintf("  %2d. [%s] %s", i+1, t.Priority, t.Title)
		if t.EstimatedHours != nil {
			line += fmt.Sprintf(" (%.1fh)", *t.EstimatedHours)
		}
		fmt.Println(line)
	}

	if genDryRun {
		return nil
	}

	// Insert without dependencies first so forward references within the
	// batch resolve, then patch the edges in.
	for i := range tasks {
		bare := tasks[i]
		bare.Dependencies = nil
		if err := s.CreateTask(&bare); err != nil {
			return fmt.Errorf("failed to persist task %q: %w", tasks[i].Title, err)
		}
	}
	for i := range tasks {
		if len(tasks[i].Dependencies) == 0 {
			continue
		}
		if err := s.UpdateTask(&tasks[i]); err != nil {
			return fmt.Errorf("failed to link dependencies for %q: %w", tasks[i].Title, err)
		}
	}
	if err := s.SetProjectPRPContent(genProjectID, content); err != nil {
		return err
	}
	fmt.Printf("Persisted %d tasks to project %s\n", len(tasks), genProjectID)
	return nil
}

// materializeTasks assigns IDs to a generated batch and resolves
// task-index-N dependency tokens to those IDs. Tokens pointing outside the
// batch are dropped.
func materializeTasks(batch []types.AITask, projectID string) []types.Task {
	ids := make([]string, len(batch))
	for i := range batch {
		ids[i] = uuid.NewString()
	}

	tasks := make([]types.Task, len(batch))
	for i, at := range batch {
		var deps []string
		for _, token := range at.Dependencies {
			idx, err := strconv.Atoi(strings.TrimPrefix(token, "task-index-"))
			if err != nil || idx < 0 || idx >= len(batch) || idx == i {
				continue
			}
			deps = append(deps, ids[idx])
		}
		tasks[i] = types.Task{
			ID:             ids[i],
			ProjectID:      projectID,
			Title:          at.Title,
			Description:    at.Description,
			Status:         types.StatusTodo,
			Priority:       at.Priority,
			Dependencies:   deps,
			EstimatedHours: at.EstimatedHours,
		}
	}
	return tasks
}
