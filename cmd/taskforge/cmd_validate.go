package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"taskforge/internal/prp"
)

var validateCmd = &cobra.Command{
	Use:   "validate [prp-file...]",
	Short: "Validate requirement documents without generating anything",
	Long: `Checks that each file's content is usable for task generation:
non-empty, within length bounds, and containing at least one
implementation keyword (implement, create, build, api, test, ...).
Files are checked concurrently; the command fails if any file is
rejected.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	type report struct {
		path   string
		errors []string
	}
	reports := make([]report, len(args))

	var g errgroup.Group
	for i, path := range args {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			result := prp.ValidateContent(prp.Sanitize(string(data)))
			reports[i] = report{path: path, errors: result.Errors}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for _, r := range reports {
		if len(r.errors) == 0 {
			fmt.Printf("ok    %s\n", r.path)
			continue
		}
		failed++
		fmt.Printf("FAIL  %s\n", r.path)
		for _, e := range r.errors {
			fmt.Printf("      %s\n", e)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files rejected", failed, len(args))
	}
	return nil
}
