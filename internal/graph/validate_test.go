package graph

import (
	"errors"
	"strings"
	"testing"

	"github.com/taskforge-dev/taskforge/internal/task"
)

func TestValidateCycle(t *testing.T) {
	tasks := []*task.Task{
		mkTask("a", 1, "b"),
		mkTask("b", 1, "a"),
	}
	g := New(tasks)

	ok, issues := g.Validate()
	if ok {
		t.Fatal("expected cycle to fail validation")
	}
	if len(issues) != 1 {
		t.Fatalf("issues = %v, want exactly one", issues)
	}
	// The cycle message names both tasks by description.
	if !strings.Contains(issues[0], "task a") || !strings.Contains(issues[0], "task b") {
		t.Errorf("cycle message should name both tasks: %q", issues[0])
	}
	if !strings.Contains(issues[0], "cycle") {
		t.Errorf("message should mention a cycle: %q", issues[0])
	}
}

func TestValidateIndirectCycle(t *testing.T) {
	tasks := []*task.Task{
		mkTask("a", 1),
		mkTask("b", 1, "a", "d"),
		mkTask("c", 1, "b"),
		mkTask("d", 1, "c"),
	}
	g := New(tasks)

	ok, issues := g.Validate()
	if ok {
		t.Fatal("expected indirect cycle to fail validation")
	}
	for _, id := range []string{"b", "c", "d"} {
		if !strings.Contains(issues[0], "task "+id) {
			t.Errorf("cycle message missing task %s: %q", id, issues[0])
		}
	}
}

func TestValidateDanglingDependency(t *testing.T) {
	tasks := []*task.Task{
		mkTask("a", 1),
		mkTask("b", 1, "ghost"),
	}
	g := New(tasks)

	ok, issues := g.Validate()
	if ok {
		t.Fatal("expected dangling dependency to fail validation")
	}
	if len(issues) != 1 || !strings.Contains(issues[0], "ghost") {
		t.Errorf("issues = %v, want one message containing the unknown id", issues)
	}
	if !strings.Contains(issues[0], "non-existent") {
		t.Errorf("message should call out the non-existent task: %q", issues[0])
	}
}

func TestValidateSelfLoop(t *testing.T) {
	g := New([]*task.Task{mkTask("a", 1, "a")})

	ok, issues := g.Validate()
	if ok {
		t.Fatal("expected self-loop to fail validation")
	}
	if len(issues) != 1 || !strings.Contains(issues[0], "depends on itself") {
		t.Errorf("issues = %v, want a single self-loop message", issues)
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	tasks := []*task.Task{
		mkTask("a", 1, "b"),
		mkTask("b", 1, "a"),
		mkTask("c", 1, "ghost"),
		mkTask("d", 1, "d"),
	}
	g := New(tasks)

	ok, issues := g.Validate()
	if ok {
		t.Fatal("expected validation to fail")
	}
	if len(issues) != 3 {
		t.Fatalf("issues = %v, want cycle + dangling + self-loop", issues)
	}
}

func TestValidateDuplicateIDs(t *testing.T) {
	g := New([]*task.Task{mkTask("a", 1), mkTask("a", 2)})

	ok, issues := g.Validate()
	if ok {
		t.Fatal("expected duplicate ids to fail validation")
	}
	if len(issues) != 1 || !strings.Contains(issues[0], "duplicate") {
		t.Errorf("issues = %v, want a duplicate-id message", issues)
	}
}

func TestOrderingFailsLoudlyOnInvalidGraph(t *testing.T) {
	g := New([]*task.Task{
		mkTask("a", 1, "b"),
		mkTask("b", 1, "a"),
	})

	if _, err := g.ExecutionOrder(); !errors.Is(err, ErrInvalidGraph) {
		t.Errorf("ExecutionOrder error = %v, want ErrInvalidGraph", err)
	}
	if _, err := g.ParallelBatches(); !errors.Is(err, ErrInvalidGraph) {
		t.Errorf("ParallelBatches error = %v, want ErrInvalidGraph", err)
	}
	if _, err := g.CriticalPathLength(); !errors.Is(err, ErrInvalidGraph) {
		t.Errorf("CriticalPathLength error = %v, want ErrInvalidGraph", err)
	}
	if _, err := g.Statistics(); !errors.Is(err, ErrInvalidGraph) {
		t.Errorf("Statistics error = %v, want ErrInvalidGraph", err)
	}
}

func TestValidateDoesNotMutate(t *testing.T) {
	tasks := []*task.Task{
		mkTask("a", 1),
		mkTask("b", 1, "a"),
	}
	g := New(tasks)
	g.Validate()
	g.Validate()

	order, err := g.ExecutionOrder()
	if err != nil {
		t.Fatalf("ExecutionOrder after repeated Validate: %v", err)
	}
	if len(order) != 2 {
		t.Errorf("order = %v", ids(order))
	}
}
