package resolver

import (
	"github.com/taskforge-dev/taskforge/internal/graph"
)

// Report bundles every analysis into one structure for a single consumer
// call, shaped for direct JSON serialization.
type Report struct {
	Statistics           graph.Statistics     `json:"statistics"`
	ImplicitDependencies []ImplicitDependency `json:"implicit_dependencies"`
	ParallelBatches      [][]string           `json:"parallel_batches"` // task IDs per batch
	Suggestions          []string             `json:"suggestions"`
	TimeWarnings         []string             `json:"time_warnings"`
	Bottlenecks          []Bottleneck         `json:"bottlenecks"`
}

// Report runs the full analysis suite over the plan. It fails only when the
// graph is structurally invalid; heuristic non-findings come back as empty
// slices.
func (r *Resolver) Report() (*Report, error) {
	stats, err := r.graph.Statistics()
	if err != nil {
		return nil, err
	}
	batches, err := r.graph.ParallelBatches()
	if err != nil {
		return nil, err
	}
	suggestions, err := r.SuggestDependencyOptimizations()
	if err != nil {
		return nil, err
	}
	warnings, err := r.ValidateTimeEstimates()
	if err != nil {
		return nil, err
	}
	bottlenecks, err := r.IdentifyBottlenecks()
	if err != nil {
		return nil, err
	}

	batchIDs := make([][]string, 0, len(batches))
	for _, batch := range batches {
		ids := make([]string, 0, len(batch))
		for _, t := range batch {
			ids = append(ids, t.ID)
		}
		batchIDs = append(batchIDs, ids)
	}

	return &Report{
		Statistics:           stats,
		ImplicitDependencies: r.DetectImplicitDependencies(),
		ParallelBatches:      batchIDs,
		Suggestions:          suggestions,
		TimeWarnings:         warnings,
		Bottlenecks:          bottlenecks,
	}, nil
}
