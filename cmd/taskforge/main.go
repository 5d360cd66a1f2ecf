package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"taskforge/internal/config"
	"taskforge/internal/logging"
	"taskforge/internal/policy"
	"taskforge/internal/store"
)

var (
	// Global flags
	verbose   bool
	workspace string
	identity  string

	// Loaded per invocation
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "taskforge",
	Short: "taskforge - dependency-aware task planning for projects",
	Long: `taskforge manages project task lists with dependency-graph validation,
priority-driven next-task selection, and AI-assisted task generation from
requirement documents.

Generated tasks carry provenance: batches produced by the completion
service are marked "ai", batches from the deterministic keyword fallback
are marked "fallback" with a reason.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if err := logging.Initialize(workspace); err != nil {
			logger.Warn("debug logging unavailable", zap.Error(err))
		}

		cfg, err = config.LoadFromWorkspace(workspace)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if identity == "" {
			identity = os.Getenv("USER")
		}
		if identity == "" {
			identity = "local"
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Close()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// openStore opens the configured SQLite database, rooted at the workspace
// when the configured path is relative.
func openStore() (*store.Store, error) {
	path := cfg.Storage.DatabasePath
	if !filepath.IsAbs(path) {
		path = filepath.Join(workspace, path)
	}
	return store.Open(path)
}

// writePolicy returns the configured mutation policy.
func writePolicy() policy.WritePolicy {
	return policy.FromIdentities(cfg.Policy.AllowedIdentities)
}

// requireWrite enforces the policy for a mutation of the given project.
func requireWrite(projectID string) error {
	if !writePolicy().CanWrite(identity, projectID) {
		return fmt.Errorf("identity %q is not permitted to modify project %s", identity, projectID)
	}
	return nil
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", ".", "Workspace root directory")
	rootCmd.PersistentFlags().StringVar(&identity, "identity", "", "Identity used for write-permission checks (default $USER)")

	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(validateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
