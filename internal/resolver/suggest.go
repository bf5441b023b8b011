package resolver

import "fmt"

// SuggestDependencyOptimizations runs an additive rule set over the plan
// structure; a plan can trigger several suggestions at once. Fails only if
// the graph is structurally invalid, since several rules need an ordering.
func (r *Resolver) SuggestDependencyOptimizations() ([]string, error) {
	critical, err := r.graph.CriticalPathTasks()
	if err != nil {
		return nil, err
	}
	batches, err := r.graph.ParallelBatches()
	if err != nil {
		return nil, err
	}

	var suggestions []string

	if len(critical) > r.th.CriticalPathTasks {
		suggestions = append(suggestions, fmt.Sprintf(
			"Critical path has %d tasks; consider splitting the chain so independent work can overlap",
			len(critical)))
	}

	for _, t := range r.graph.Tasks() {
		if n := len(r.graph.Descendants(t.ID)); n > r.th.DependentFanout {
			suggestions = append(suggestions, fmt.Sprintf(
				"Task %q has %d transitive dependents and is a bottleneck candidate; a delay there stalls most of the plan",
				t.Description, n))
		}
	}

	if leaves := r.graph.Leaves(); len(leaves) > r.th.LeafTasks {
		suggestions = append(suggestions, fmt.Sprintf(
			"Plan has %d leaf tasks; check whether all of them are intended final outputs",
			len(leaves)))
	}

	if roots := r.graph.Roots(); len(roots) > 1 {
		suggestions = append(suggestions, fmt.Sprintf(
			"%d independent entry tasks can start immediately in parallel",
			len(roots)))
	}

	if n := r.graph.Len(); n > 0 && float64(len(batches)) > r.th.BatchRatio*float64(n) {
		suggestions = append(suggestions, fmt.Sprintf(
			"Plan is overly sequential: %d batches for %d tasks; look for dependencies that can be relaxed",
			len(batches), n))
	}

	suggestions = append(suggestions, r.redundantDependencies()...)
	return suggestions, nil
}

// redundantDependencies flags tasks that declare a dependency which is
// already a transitive dependency of one of their other dependencies.
func (r *Resolver) redundantDependencies() []string {
	var out []string
	for _, t := range r.graph.Tasks() {
		for _, redundant := range t.DependsOn {
			for _, other := range t.DependsOn {
				if other == redundant {
					continue
				}
				if _, ok := r.graph.Ancestors(other)[redundant]; ok {
					out = append(out, fmt.Sprintf(
						"Task %q depends on %q directly, but already reaches it through %q; the direct edge is redundant",
						t.Description, r.describe(redundant), r.describe(other)))
					break
				}
			}
		}
	}
	return out
}

func (r *Resolver) describe(id string) string {
	if t, ok := r.graph.Task(id); ok && t.Description != "" {
		return t.Description
	}
	return id
}
