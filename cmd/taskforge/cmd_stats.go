package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"taskforge/internal/planner"
)

var (
	statsProjectID string
	statsJSON      bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show summary statistics for a project",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVarP(&statsProjectID, "project", "p", "", "Project ID (required)")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Emit JSON instead of text")
	_ = statsCmd.MarkFlagRequired("project")
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	tasks, err := s.ListTasks(statsProjectID)
	if err != nil {
		return err
	}
	summary := planner.Aggregate(tasks)

	if statsJSON {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Tasks:        %d total, %d done, %d in progress, %d blocked\n",
		summary.TotalTasks, summary.CompletedTasks, summary.InProgressTasks, summary.BlockedTasks)
	fmt.Printf("Completion:   %.1f%%\n", summary.CompletionRate)
	fmt.Printf("Hours:        %.1f estimated, %.1f actual\n",
		summary.TotalEstimatedHours, summary.TotalActualHours)
	if summary.AverageTaskDuration > 0 {
		fmt.Printf("Avg duration: %.1fh per completed task\n", summary.AverageTaskDuration)
	}
	if summary.EfficiencyRatio > 0 {
		fmt.Printf("Efficiency:   %.1f%% (above 100 means finishing under estimate)\n", summary.EfficiencyRatio)
	}
	return nil
}
