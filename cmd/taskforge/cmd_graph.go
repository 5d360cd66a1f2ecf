package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskforge/internal/graph"
)

var (
	graphProjectID string
	graphLenient   bool
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Show the project's dependency graph by level",
	Long: `Builds the dependency graph over the project's tasks and prints it
layer by layer: level 0 holds tasks with no dependencies, level N tasks
whose longest prerequisite chain has length N.

Stored data should never contain a cycle; --lenient renders corrupted
data anyway, with cycle branches collapsed to level 0.`,
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().StringVarP(&graphProjectID, "project", "p", "", "Project ID (required)")
	graphCmd.Flags().BoolVar(&graphLenient, "lenient", false, "Render even if the stored graph contains a cycle")
	_ = graphCmd.MarkFlagRequired("project")
}

func runGraph(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	tasks, err := s.ListTasks(graphProjectID)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks.")
		return nil
	}

	titles := make(map[string]string, len(tasks))
	for _, t := range tasks {
		titles[t.ID] = t.Title
	}

	var g graph.Graph
	if graphLenient {
		g = graph.BuildGraphLenient(tasks)
	} else {
		g, err = graph.BuildGraph(tasks)
		if err != nil {
			return fmt.Errorf("%w (re-run with --lenient to render anyway)", err)
		}
	}

	for level, ids := range g.Layers() {
		fmt.Printf("Level %d:\n", level)
		for _, id := range ids {
			node := g[id]
			fmt.Printf("  %s  %s", id, titles[id])
			if len(node.Dependents) > 0 {
				fmt.Printf("  (unblocks %d)", len(node.Dependents))
			}
			fmt.Println()
		}
	}
	return nil
}
