package cli

import (
	"fmt"

	"github.com/taskforge-dev/taskforge/internal/config"
	"github.com/taskforge-dev/taskforge/internal/graph"
	"github.com/taskforge-dev/taskforge/internal/planfile"
	"github.com/taskforge-dev/taskforge/internal/resolver"
	"github.com/taskforge-dev/taskforge/internal/task"
)

// loadPlan reads and normalizes a plan file, building its graph view.
func loadPlan(path string) (*task.ExecutionPlan, *graph.Graph, error) {
	plan, err := planfile.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return plan, graph.New(plan.Tasks), nil
}

// loadConfig reads taskforge.yaml (or the --config override) and validates it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// thresholdsFromConfig maps the resolver section of the config onto the
// resolver's tuning, keeping structural defaults for the untunable knobs.
func thresholdsFromConfig(cfg *config.Config) resolver.Thresholds {
	th := resolver.DefaultThresholds()
	th.MinTaskSeconds = cfg.Resolver.MinTaskSeconds
	th.MaxTaskSeconds = cfg.Resolver.MaxTaskSeconds
	th.ParallelRatio = cfg.Resolver.ParallelRatio
	th.SequentialRatio = cfg.Resolver.SequentialRatio
	th.TotalDriftSeconds = cfg.Resolver.TotalDriftSeconds
	th.BottleneckScore = cfg.Resolver.BottleneckScore
	return th
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
