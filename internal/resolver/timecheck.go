package resolver

import (
	"fmt"
	"math"
)

// ValidateTimeEstimates sanity-checks the plan's time data: per-task bounds,
// the critical-path-to-total ratio, and drift between the declared plan total
// and the sum of task estimates. Warnings are advisory strings; an empty
// result means the estimates look plausible.
func (r *Resolver) ValidateTimeEstimates() ([]string, error) {
	var warnings []string

	for _, t := range r.plan.Tasks {
		switch {
		case t.EstimatedTime < r.th.MinTaskSeconds:
			warnings = append(warnings, fmt.Sprintf(
				"Task %q estimate %.0fs is unrealistically short (minimum %.0fs)",
				t.Description, t.EstimatedTime, r.th.MinTaskSeconds))
		case t.EstimatedTime > r.th.MaxTaskSeconds:
			warnings = append(warnings, fmt.Sprintf(
				"Task %q estimate %.0fs is too long and should be broken down (maximum %.0fs)",
				t.Description, t.EstimatedTime, r.th.MaxTaskSeconds))
		}
	}

	critical, err := r.graph.CriticalPathLength()
	if err != nil {
		return nil, err
	}
	total := r.plan.TotalEstimatedTime()

	if total > 0 {
		switch ratio := critical / total; {
		case ratio < r.th.ParallelRatio:
			warnings = append(warnings, fmt.Sprintf(
				"High parallelization potential: parallel execution could save %.0fs of the %.0fs sequential total",
				total-critical, total))
		case ratio > r.th.SequentialRatio:
			warnings = append(warnings, fmt.Sprintf(
				"Plan is highly sequential: parallel execution saves at most %.0fs of %.0fs",
				total-critical, total))
		}
	}

	if r.plan.EstimatedTotalTime > 0 && math.Abs(r.plan.EstimatedTotalTime-total) > r.th.TotalDriftSeconds {
		warnings = append(warnings, fmt.Sprintf(
			"Plan declares %.0fs total but task estimates sum to %.0fs",
			r.plan.EstimatedTotalTime, total))
	}

	return warnings, nil
}
