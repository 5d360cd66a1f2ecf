package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskforge/internal/planner"
)

var (
	nextProjectID      string
	nextExcludeBlocked bool
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the next task to work on",
	Long: `Selects the highest-priority task whose dependencies are all done.
Ties break toward the oldest task. Blocked tasks are considered unless
--exclude-blocked is given; tasks that are done or already in progress
never are.`,
	RunE: runNext,
}

func init() {
	nextCmd.Flags().StringVarP(&nextProjectID, "project", "p", "", "Project ID (required)")
	nextCmd.Flags().BoolVar(&nextExcludeBlocked, "exclude-blocked", false, "Skip tasks whose status is blocked")
	_ = nextCmd.MarkFlagRequired("project")
}

func runNext(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	tasks, err := s.ListTasks(nextProjectID)
	if err != nil {
		return err
	}

	task := planner.SelectNext(tasks, nextExcludeBlocked)
	if task == nil {
		fmt.Println("No eligible task: everything is done, in progress, or waiting on dependencies.")
		return nil
	}

	fmt.Printf("%s  [%s/%s]  %s\n", task.ID, task.Priority, task.Status, task.Title)
	if task.Description != "" {
		fmt.Printf("    %s\n", task.Description)
	}
	if len(task.Dependencies) > 0 {
		fmt.Printf("    depends on: %v\n", task.Dependencies)
	}
	if task.EstimatedHours != nil {
		fmt.Printf("    estimate: %.1fh\n", *task.EstimatedHours)
	}
	return nil
}
