package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"taskforge/internal/types"
)

var projectContextJSON string

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectCreate,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	RunE:  runProjectList,
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete [project-id]",
	Short: "Delete a project and all of its tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectDelete,
}

func init() {
	projectCreateCmd.Flags().StringVar(&projectContextJSON, "context", "", "Project context as a JSON object (language, framework, ...)")
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectDeleteCmd)
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	p := &types.Project{Name: args[0]}
	if projectContextJSON != "" {
		if err := json.Unmarshal([]byte(projectContextJSON), &p.Context); err != nil {
			return fmt.Errorf("invalid --context JSON: %w", err)
		}
	}

	if err := requireWrite(""); err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.CreateProject(p); err != nil {
		return err
	}
	fmt.Printf("Created project %s (%s)\n", p.ID, p.Name)
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	projects, err := s.ListProjects()
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("No projects.")
		return nil
	}
	for _, p := range projects {
		tasks, err := s.ListTasks(p.ID)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %-20s  %d tasks\n", p.ID, p.Name, len(tasks))
	}
	return nil
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	projectID := args[0]
	if err := requireWrite(projectID); err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.DeleteProject(projectID); err != nil {
		return err
	}
	fmt.Printf("Deleted project %s\n", projectID)
	return nil
}
