// Package config loads taskforge configuration from
// .taskforge/config.yaml, with environment overrides for credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"taskforge/internal/types"
)

// Config holds all taskforge configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// External completion service
	LLM LLMConfig `yaml:"llm"`

	// Task generation defaults
	Generation GenerationConfig `yaml:"generation"`

	// SQLite storage
	Storage StorageConfig `yaml:"storage"`

	// Write-permission policy
	Policy PolicyConfig `yaml:"policy"`

	// Debug logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the completion service client.
type LLMConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	MaxTokens int    `yaml:"max_tokens"`
	Timeout   string `yaml:"timeout"`
}

// GenerationConfig configures pipeline defaults. These are the startup
// defaults; per-call directives can override them.
type GenerationConfig struct {
	MaxTasks             int    `yaml:"max_tasks"`
	IncludeMilestones    bool   `yaml:"include_milestones"`
	DefaultPriority      string `yaml:"default_priority"`
	EstimateHours        bool   `yaml:"estimate_hours"`
	GenerateDependencies bool   `yaml:"generate_dependencies"`
}

// StorageConfig configures the SQLite store.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// PolicyConfig configures who may mutate which projects. An empty allowlist
// means every identity may write.
type PolicyConfig struct {
	AllowedIdentities []string `yaml:"allowed_identities"`
}

// LoggingConfig configures the category file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "taskforge",
		Version: "0.3.0",

		LLM: LLMConfig{
			Model:     "gpt-4o-mini",
			BaseURL:   "https://api.openai.com/v1",
			MaxTokens: 4096,
			Timeout:   "120s",
		},

		Generation: GenerationConfig{
			MaxTasks:             20,
			DefaultPriority:      string(types.PriorityMedium),
			EstimateHours:        true,
			GenerateDependencies: true,
		},

		Storage: StorageConfig{
			DatabasePath: ".taskforge/taskforge.db",
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// LoadFromWorkspace loads .taskforge/config.yaml under the workspace root.
func LoadFromWorkspace(workspace string) (*Config, error) {
	return Load(filepath.Join(workspace, ".taskforge", "config.yaml"))
}

// Save writes configuration to a YAML file, creating directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides. Credentials
// never belong in the config file.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("TASKFORGE_API_KEY"); key != "" {
		c.LLM.APIKey = key
	} else if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if path := os.Getenv("TASKFORGE_DB"); path != "" {
		c.Storage.DatabasePath = path
	}
}

// GetLLMTimeout parses the configured timeout with a 120s fallback.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// GenerationDefaults converts the configured defaults into the pipeline's
// config type.
func (c *Config) GenerationDefaults() types.GenerationConfig {
	priority, _ := types.ParsePriority(c.Generation.DefaultPriority, types.PriorityMedium)
	return types.GenerationConfig{
		MaxTasks:             c.Generation.MaxTasks,
		IncludeMilestones:    c.Generation.IncludeMilestones,
		DefaultPriority:      priority,
		EstimateHours:        c.Generation.EstimateHours,
		GenerateDependencies: c.Generation.GenerateDependencies,
	}.Normalize()
}

// Validate checks that the config can drive AI generation. The fallback
// path works without an API key, so callers may choose to warn instead of
// failing.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key not configured (set TASKFORGE_API_KEY or OPENAI_API_KEY)")
	}
	if c.Generation.MaxTasks < 0 {
		return fmt.Errorf("generation.max_tasks must not be negative")
	}
	return nil
}
