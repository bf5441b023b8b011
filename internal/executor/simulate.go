package executor

import (
	"context"
	"time"

	"github.com/taskforge-dev/taskforge/internal/task"
)

// SimulatedRunner performs no real work: it sleeps a scaled fraction of each
// task's estimated time and reports success. Useful for dry-running a plan's
// schedule and for exercising the executor in the CLI.
type SimulatedRunner struct {
	// Scale converts estimated seconds into simulated seconds. A scale of
	// 0.01 runs a 100s estimate in one second. Zero or negative completes
	// tasks instantly.
	Scale float64
}

func (s SimulatedRunner) Run(ctx context.Context, t *task.Task) (*task.Output, error) {
	if s.Scale > 0 {
		d := time.Duration(t.EstimatedTime * s.Scale * float64(time.Second))
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return &task.Output{
		Success:       true,
		ExecutionTime: t.EstimatedTime * max(s.Scale, 0),
		Context:       map[string]any{"simulated": true},
	}, nil
}
