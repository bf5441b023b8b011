package task

import (
	"fmt"

	"github.com/google/uuid"
)

// ExecutionPlan is the aggregate exchanged with the planner and executor:
// a goal, its task list, and plan-level metadata. The plan is owned by the
// caller; the graph and resolver hold views of it, never copies.
type ExecutionPlan struct {
	ID                 string   `json:"id" yaml:"id"`
	Goal               string   `json:"goal" yaml:"goal"`
	Tasks              []*Task  `json:"tasks" yaml:"tasks"`
	EstimatedTotalTime float64  `json:"estimated_total_time" yaml:"estimated_total_time"` // seconds
	ComplexityScore    float64  `json:"complexity_score" yaml:"complexity_score"`
	Validated          bool     `json:"validated" yaml:"validated"`
	ValidationIssues   []string `json:"validation_issues,omitempty" yaml:"validation_issues,omitempty"`
}

// NewPlan creates an empty plan for the given goal.
func NewPlan(goal string) *ExecutionPlan {
	return &ExecutionPlan{ID: uuid.NewString(), Goal: goal}
}

// Add appends a task to the plan.
func (p *ExecutionPlan) Add(t *Task) {
	p.Tasks = append(p.Tasks, t)
}

// TaskByID returns the task with the given ID.
func (p *ExecutionPlan) TaskByID(id string) (*Task, bool) {
	for _, t := range p.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// TotalEstimatedTime sums the task estimates, in seconds. This is the wall
// clock for fully sequential execution, independent of the declared
// EstimatedTotalTime the planner may have set.
func (p *ExecutionPlan) TotalEstimatedTime() float64 {
	var total float64
	for _, t := range p.Tasks {
		total += t.EstimatedTime
	}
	return total
}

// Normalize fills defaults on the plan and every task and rejects duplicate
// task IDs. It is called once at ingestion, before any graph is built.
func (p *ExecutionPlan) Normalize() error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	seen := make(map[string]struct{}, len(p.Tasks))
	for _, t := range p.Tasks {
		if err := t.Normalize(); err != nil {
			return err
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("duplicate task id: %q", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

// SetValidation records the outcome of a graph validation pass on the plan.
func (p *ExecutionPlan) SetValidation(valid bool, issues []string) {
	p.Validated = valid
	p.ValidationIssues = issues
}
