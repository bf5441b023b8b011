// Package resolver layers heuristic dependency analysis on a task graph:
// implicit-dependency inference, optimization suggestions, time-estimate
// sanity checks, bottleneck scoring, and a consolidated report.
//
// Nothing here mutates the graph except AddImplicitDependencies, which
// mutates the plan explicitly and then rebuilds the graph from scratch.
// A non-finding is always an empty slice, never an error.
package resolver

import (
	"log/slog"

	"github.com/taskforge-dev/taskforge/internal/graph"
	"github.com/taskforge-dev/taskforge/internal/task"
)

// Thresholds tunes the resolver's heuristics. Zero values are not meaningful;
// start from DefaultThresholds.
type Thresholds struct {
	MinTaskSeconds    float64 // estimates below this are unrealistically short
	MaxTaskSeconds    float64 // estimates above this should be broken down
	ParallelRatio     float64 // critical/total below this means high parallelization potential
	SequentialRatio   float64 // critical/total above this means limited parallelization benefit
	TotalDriftSeconds float64 // tolerated gap between declared and summed plan time
	BottleneckScore   float64 // minimum score for a task to qualify as a bottleneck
	CriticalPathTasks int     // critical paths longer than this suggest splitting
	DependentFanout   int     // more transitive dependents than this flags a choke point
	LeafTasks         int     // more leaves than this asks whether all are intended outputs
	BatchRatio        float64 // batches/tasks above this flags an overly sequential plan
	LongTaskSeconds   float64 // estimates above this contribute to the bottleneck score
}

// DefaultThresholds returns the standard heuristic tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinTaskSeconds:    5,
		MaxTaskSeconds:    600,
		ParallelRatio:     0.3,
		SequentialRatio:   0.9,
		TotalDriftSeconds: 30,
		BottleneckScore:   50,
		CriticalPathTasks: 10,
		DependentFanout:   5,
		LeafTasks:         5,
		BatchRatio:        0.7,
		LongTaskSeconds:   120,
	}
}

// Resolver analyzes an execution plan. It holds a view of the plan, never a
// copy, and rebuilds its graph whenever it mutates the plan.
type Resolver struct {
	plan   *task.ExecutionPlan
	graph  *graph.Graph
	th     Thresholds
	logger *slog.Logger
}

// New creates a resolver over the plan with the given thresholds. A nil
// logger disables logging.
func New(plan *task.ExecutionPlan, th Thresholds, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		plan:   plan,
		graph:  graph.New(plan.Tasks),
		th:     th,
		logger: logger,
	}
}

// Graph returns the resolver's current graph view of the plan.
func (r *Resolver) Graph() *graph.Graph { return r.graph }

// OptimizeParallelExecution returns the plan's maximal parallel batches.
func (r *Resolver) OptimizeParallelExecution() ([][]*task.Task, error) {
	return r.graph.ParallelBatches()
}
