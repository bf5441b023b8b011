package resolver

import (
	"fmt"
	"sort"

	"github.com/taskforge-dev/taskforge/internal/task"
)

// Bottleneck scores a task whose delay or failure disproportionately affects
// the rest of the plan.
type Bottleneck struct {
	Task           *task.Task `json:"-"`
	TaskID         string     `json:"task_id"`
	Description    string     `json:"description"`
	Score          float64    `json:"score"`
	DependentCount int        `json:"dependent_count"`
	OnCriticalPath bool       `json:"on_critical_path"`
	Reasons        []string   `json:"reasons"`
}

// IdentifyBottlenecks scores every task and returns those at or above the
// bottleneck threshold, sorted by descending score. Scoring:
//
//	10 x transitive dependents   when more than 3 depend on it
//	50                           when the task lies on the critical path
//	estimated_time / 10          when the estimate exceeds the long-task bound
//	30                           when risk is high or critical
func (r *Resolver) IdentifyBottlenecks() ([]Bottleneck, error) {
	critical, err := r.graph.CriticalPathTasks()
	if err != nil {
		return nil, err
	}
	onCritical := make(map[string]bool, len(critical))
	for _, t := range critical {
		onCritical[t.ID] = true
	}

	var bottlenecks []Bottleneck
	for _, t := range r.graph.Tasks() {
		dependents := len(r.graph.Descendants(t.ID))

		var score float64
		var reasons []string

		if dependents > 3 {
			score += 10 * float64(dependents)
			reasons = append(reasons, fmt.Sprintf("blocks %d downstream tasks", dependents))
		}
		if onCritical[t.ID] {
			score += 50
			reasons = append(reasons, "lies on the critical path")
		}
		if t.EstimatedTime > r.th.LongTaskSeconds {
			score += t.EstimatedTime / 10
			reasons = append(reasons, fmt.Sprintf("long estimate of %.0fs", t.EstimatedTime))
		}
		if t.RiskLevel == task.RiskHigh || t.RiskLevel == task.RiskCritical {
			score += 30
			reasons = append(reasons, fmt.Sprintf("%s risk level", t.RiskLevel))
		}

		if score >= r.th.BottleneckScore {
			bottlenecks = append(bottlenecks, Bottleneck{
				Task:           t,
				TaskID:         t.ID,
				Description:    t.Description,
				Score:          score,
				DependentCount: dependents,
				OnCriticalPath: onCritical[t.ID],
				Reasons:        reasons,
			})
		}
	}

	sort.SliceStable(bottlenecks, func(i, j int) bool {
		return bottlenecks[i].Score > bottlenecks[j].Score
	})
	return bottlenecks, nil
}
