// Package task defines the task and execution-plan model that the graph and
// resolver operate on.
package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type classifies the kind of side effect a task performs.
type Type string

const (
	TypeRead     Type = "read"
	TypeWrite    Type = "write"
	TypeExecute  Type = "execute"
	TypeValidate Type = "validate"
	TypePlan     Type = "plan"
	TypeThink    Type = "think"
)

// ParseType normalizes a task type string. An empty string defaults to execute.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return TypeExecute, nil
	case TypeRead, TypeWrite, TypeExecute, TypeValidate, TypePlan, TypeThink:
		return t, nil
	default:
		return "", fmt.Errorf("unknown task type: %q", s)
	}
}

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusReady     Status = "ready"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether the status is final. Terminal tasks never reopen.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusSkipped, StatusCancelled:
		return true
	}
	return false
}

// RiskLevel is a closed enumeration of task risk ratings.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// ParseRiskLevel normalizes a free-form risk string into the closed enum.
// An empty string defaults to medium; any other unknown value is rejected.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch r := RiskLevel(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RiskMedium, nil
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return r, nil
	default:
		return "", fmt.Errorf("unknown risk level: %q", s)
	}
}

// Requirement describes what executing a task needs.
type Requirement struct {
	AgentType           string         `json:"agent_type,omitempty" yaml:"agent_type,omitempty"`
	Tools               []string       `json:"tools,omitempty" yaml:"tools,omitempty"`
	Inputs              map[string]any `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	ContextDependencies []string       `json:"context_dependencies,omitempty" yaml:"context_dependencies,omitempty"`
}

// Input returns a string-valued requirement input, if present.
func (r Requirement) Input(key string) (string, bool) {
	v, ok := r.Inputs[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Output records the result of an executed task.
type Output struct {
	Success       bool           `json:"success" yaml:"success"`
	Data          any            `json:"data,omitempty" yaml:"data,omitempty"`
	Context       map[string]any `json:"context,omitempty" yaml:"context,omitempty"`
	Error         string         `json:"error,omitempty" yaml:"error,omitempty"`
	ExecutionTime float64        `json:"execution_time" yaml:"execution_time"` // seconds
}

// Task represents a unit of work with declared dependencies.
type Task struct {
	ID            string      `json:"id" yaml:"id"`
	Description   string      `json:"description" yaml:"description"`
	Type          Type        `json:"type" yaml:"type"`
	Requirement   Requirement `json:"requirement,omitempty" yaml:"requirement,omitempty"`
	DependsOn     []string    `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	Status        Status      `json:"status" yaml:"status"`
	Priority      int         `json:"priority" yaml:"priority"`
	EstimatedTime float64     `json:"estimated_time" yaml:"estimated_time"` // seconds
	RiskLevel     RiskLevel   `json:"risk_level" yaml:"risk_level"`
	Output        *Output     `json:"output,omitempty" yaml:"output,omitempty"`
	StartedAt     *time.Time  `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	CompletedAt   *time.Time  `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// New creates a pending task with a generated ID.
func New(description string, typ Type) *Task {
	return &Task{
		ID:          uuid.NewString(),
		Description: description,
		Type:        typ,
		Status:      StatusPending,
		RiskLevel:   RiskMedium,
	}
}

// DependsOnTask reports whether id appears in the task's declared dependencies.
func (t *Task) DependsOnTask(id string) bool {
	for _, dep := range t.DependsOn {
		if dep == id {
			return true
		}
	}
	return false
}

// Transition moves the task to a new status, enforcing the lifecycle state
// machine: pending -> ready -> running -> exactly one terminal state.
// Cancellation is allowed from any non-terminal state; skipping from pending
// or ready.
func (t *Task) Transition(to Status) error {
	if !allowedTransition(t.Status, to) {
		return fmt.Errorf("task %s: invalid transition %s -> %s", t.ID, t.Status, to)
	}
	t.Status = to
	now := time.Now()
	switch to {
	case StatusRunning:
		t.StartedAt = &now
	case StatusCompleted, StatusFailed, StatusSkipped, StatusCancelled:
		t.CompletedAt = &now
	}
	return nil
}

func allowedTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusReady || to == StatusSkipped || to == StatusCancelled
	case StatusReady:
		return to == StatusRunning || to == StatusSkipped || to == StatusCancelled
	case StatusRunning:
		return to == StatusCompleted || to == StatusFailed || to == StatusCancelled
	}
	return false
}

// Complete marks the task completed and records its output.
func (t *Task) Complete(out Output) error {
	if err := t.Transition(StatusCompleted); err != nil {
		return err
	}
	out.Success = true
	t.Output = &out
	return nil
}

// Fail marks the task failed with the given error message.
func (t *Task) Fail(errMsg string, executionTime float64) error {
	if err := t.Transition(StatusFailed); err != nil {
		return err
	}
	t.Output = &Output{Success: false, Error: errMsg, ExecutionTime: executionTime}
	return nil
}

// Normalize fills defaults and validates enum fields at ingestion.
func (t *Task) Normalize() error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	typ, err := ParseType(string(t.Type))
	if err != nil {
		return fmt.Errorf("task %s: %w", t.ID, err)
	}
	t.Type = typ

	risk, err := ParseRiskLevel(string(t.RiskLevel))
	if err != nil {
		return fmt.Errorf("task %s: %w", t.ID, err)
	}
	t.RiskLevel = risk

	if t.Status == "" {
		t.Status = StatusPending
	}
	switch t.Status {
	case StatusPending, StatusReady, StatusRunning, StatusCompleted,
		StatusFailed, StatusSkipped, StatusCancelled:
	default:
		return fmt.Errorf("task %s: unknown status: %q", t.ID, t.Status)
	}

	if t.EstimatedTime < 0 {
		return fmt.Errorf("task %s: negative estimated_time %.2f", t.ID, t.EstimatedTime)
	}
	return nil
}
