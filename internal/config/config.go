// Package config handles taskforge configuration parsing and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the taskforge.yaml configuration file.
type Config struct {
	Version  string         `yaml:"version"`
	Resolver ResolverConfig `yaml:"resolver"`
	Executor ExecutorConfig `yaml:"executor"`
	History  HistoryConfig  `yaml:"history"`
}

// ResolverConfig tunes the dependency resolver's heuristics.
type ResolverConfig struct {
	MinTaskSeconds    float64 `yaml:"min_task_seconds"`
	MaxTaskSeconds    float64 `yaml:"max_task_seconds"`
	ParallelRatio     float64 `yaml:"parallel_ratio"`
	SequentialRatio   float64 `yaml:"sequential_ratio"`
	TotalDriftSeconds float64 `yaml:"total_drift_seconds"`
	BottleneckScore   float64 `yaml:"bottleneck_score"`
}

// ExecutorConfig controls the reference batch executor.
type ExecutorConfig struct {
	Workers         int     `yaml:"workers"`
	SkipDescendants bool    `yaml:"skip_descendants"`
	SimulationScale float64 `yaml:"simulation_scale"` // simulated seconds per estimated second
}

// HistoryConfig locates the plan/report history database.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Resolver: ResolverConfig{
			MinTaskSeconds:    5,
			MaxTaskSeconds:    600,
			ParallelRatio:     0.3,
			SequentialRatio:   0.9,
			TotalDriftSeconds: 30,
			BottleneckScore:   50,
		},
		Executor: ExecutorConfig{
			Workers:         4,
			SkipDescendants: true,
			SimulationScale: 0.01,
		},
		History: HistoryConfig{
			Path: ".taskforge/history.db",
		},
	}
}

// Load reads and parses the taskforge.yaml config file. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "taskforge.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	r := c.Resolver
	if r.MinTaskSeconds < 0 || r.MaxTaskSeconds <= r.MinTaskSeconds {
		return fmt.Errorf("resolver task-time bounds invalid: min %.0f, max %.0f", r.MinTaskSeconds, r.MaxTaskSeconds)
	}
	if r.ParallelRatio <= 0 || r.ParallelRatio >= 1 {
		return fmt.Errorf("parallel_ratio must be in (0, 1), got %.2f", r.ParallelRatio)
	}
	if r.SequentialRatio <= r.ParallelRatio || r.SequentialRatio > 1 {
		return fmt.Errorf("sequential_ratio must be in (parallel_ratio, 1], got %.2f", r.SequentialRatio)
	}
	if r.BottleneckScore <= 0 {
		return fmt.Errorf("bottleneck_score must be positive, got %.0f", r.BottleneckScore)
	}
	if c.Executor.Workers < 0 {
		return fmt.Errorf("executor workers must be non-negative, got %d", c.Executor.Workers)
	}
	if c.History.Path == "" {
		return fmt.Errorf("history path must not be empty")
	}
	return nil
}
