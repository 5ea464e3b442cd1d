// Package config loads assembler settings from YAML files, .env files,
// and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/agent-context/internal/budget"
)

// Defaults for everything a config file may override.
const (
	DefaultSimilarityThreshold = 0.3
	DefaultCharsPerToken       = 4.0
	DefaultMemoryWindow        = 5
	DefaultToolWindow          = 10
)

// DefaultInstructions is the fixed system preamble used when none is
// configured.
const DefaultInstructions = "You are a helpful assistant. Answer using the context provided below. " +
	"If the context does not contain the answer, say so rather than guessing."

// Config is the full runtime configuration.
type Config struct {
	Budgets             budget.Config `yaml:"budgets"`
	SimilarityThreshold float64       `yaml:"similarity_threshold"`
	CharsPerToken       float64       `yaml:"chars_per_token"`
	MemoryWindow        int           `yaml:"memory_window"`
	ToolWindow          int           `yaml:"tool_window"`
	DataDir             string        `yaml:"data_dir"`
	Instructions        string        `yaml:"instructions"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Budgets:             budget.DefaultConfig(),
		SimilarityThreshold: DefaultSimilarityThreshold,
		CharsPerToken:       DefaultCharsPerToken,
		MemoryWindow:        DefaultMemoryWindow,
		ToolWindow:          DefaultToolWindow,
		DataDir:             filepath.Join(home, ".agent-context"),
		Instructions:        DefaultInstructions,
	}
}

// Load reads configuration in ascending precedence: defaults, then the
// YAML file at path (if non-empty and present), then environment
// variables. A .env file in the working directory is loaded first so
// its variables participate in the environment pass.
func Load(path string) (Config, error) {
	godotenv.Load() // missing .env is fine

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks budgets and tuning values.
func (c Config) Validate() error {
	if err := c.Budgets.Validate(); err != nil {
		return err
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in [0, 1], got %g", c.SimilarityThreshold)
	}
	if c.CharsPerToken <= 0 {
		return fmt.Errorf("chars_per_token must be positive, got %g", c.CharsPerToken)
	}
	if c.MemoryWindow <= 0 || c.ToolWindow <= 0 {
		return fmt.Errorf("memory_window and tool_window must be positive")
	}
	return nil
}

// MemoryDBPath returns the conversation store path inside DataDir.
func (c Config) MemoryDBPath() string {
	return filepath.Join(c.DataDir, "memory.db")
}

// ToolDBPath returns the tool output log path inside DataDir.
func (c Config) ToolDBPath() string {
	return filepath.Join(c.DataDir, "tools.db")
}

// DocsDBPath returns the retrieval document store path inside DataDir.
func (c Config) DocsDBPath() string {
	return filepath.Join(c.DataDir, "docs.db")
}

// applyEnv overrides config fields from AGENT_CONTEXT_* variables.
func applyEnv(cfg *Config) {
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setFloat := func(key string, dst *float64) {
		if v := os.Getenv(key); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}

	setInt("AGENT_CONTEXT_BUDGET_INSTRUCTIONS", &cfg.Budgets.Instructions)
	setInt("AGENT_CONTEXT_BUDGET_GOAL", &cfg.Budgets.Goal)
	setInt("AGENT_CONTEXT_BUDGET_MEMORY", &cfg.Budgets.Memory)
	setInt("AGENT_CONTEXT_BUDGET_RETRIEVAL", &cfg.Budgets.Retrieval)
	setInt("AGENT_CONTEXT_BUDGET_TOOL_OUTPUTS", &cfg.Budgets.ToolOutputs)
	setFloat("AGENT_CONTEXT_SIMILARITY_THRESHOLD", &cfg.SimilarityThreshold)
	setFloat("AGENT_CONTEXT_CHARS_PER_TOKEN", &cfg.CharsPerToken)
	setInt("AGENT_CONTEXT_MEMORY_WINDOW", &cfg.MemoryWindow)
	setInt("AGENT_CONTEXT_TOOL_WINDOW", &cfg.ToolWindow)

	if v := os.Getenv("AGENT_CONTEXT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("AGENT_CONTEXT_INSTRUCTIONS"); v != "" {
		cfg.Instructions = v
	}
}
