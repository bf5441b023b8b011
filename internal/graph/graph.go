// Package graph builds a directed acyclic dependency graph over a task list
// and answers structural queries: validation, execution order, parallel
// batches, reachability, and critical path.
//
// Edges point dependency -> dependent. Construction is O(n + e) and never
// fails; Validate reports every structural problem as data so callers can
// display all of them at once. Only the ordering queries fail loudly, since
// ordering an invalid graph is undefined.
package graph

import (
	"errors"

	"github.com/taskforge-dev/taskforge/internal/task"
)

// ErrInvalidGraph marks operations that are undefined on a structurally
// invalid graph. Callers are expected to check Validate first.
var ErrInvalidGraph = errors.New("invalid task graph")

// Edge is a dependency relation: To depends on From.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is a dependency DAG over a task list. It holds a view of the
// caller's tasks, never a copy, and is logically immutable after
// construction: mutations to the task list require a rebuild.
type Graph struct {
	tasks []*task.Task
	byID  map[string]*task.Task
	index map[string]int // id -> position in tasks, used for deterministic ordering

	parents  map[string][]string // dependent -> dependencies present in the set
	children map[string][]string // dependency -> dependents

	missing    map[string][]string // task id -> depends_on entries with no matching task
	selfLoops  []string
	duplicates []string
}

// New builds a graph from the task list. Construction always succeeds;
// structural problems are recorded and reported by Validate.
func New(tasks []*task.Task) *Graph {
	g := &Graph{
		byID:     make(map[string]*task.Task, len(tasks)),
		index:    make(map[string]int, len(tasks)),
		parents:  make(map[string][]string),
		children: make(map[string][]string),
		missing:  make(map[string][]string),
	}

	for _, t := range tasks {
		if _, dup := g.byID[t.ID]; dup {
			g.duplicates = append(g.duplicates, t.ID)
			continue
		}
		g.index[t.ID] = len(g.tasks)
		g.byID[t.ID] = t
		g.tasks = append(g.tasks, t)
	}

	for _, t := range g.tasks {
		for _, dep := range t.DependsOn {
			switch {
			case dep == t.ID:
				g.selfLoops = append(g.selfLoops, t.ID)
			case g.byID[dep] == nil:
				g.missing[t.ID] = append(g.missing[t.ID], dep)
			default:
				g.parents[t.ID] = append(g.parents[t.ID], dep)
				g.children[dep] = append(g.children[dep], t.ID)
			}
		}
	}
	return g
}

// Len returns the number of distinct tasks in the graph.
func (g *Graph) Len() int { return len(g.tasks) }

// Task returns a task by ID.
func (g *Graph) Task(id string) (*task.Task, bool) {
	t, ok := g.byID[id]
	return t, ok
}

// Tasks returns the tasks in their original list order.
func (g *Graph) Tasks() []*task.Task {
	out := make([]*task.Task, len(g.tasks))
	copy(out, g.tasks)
	return out
}

// Edges returns the resolved dependency edges in task-list order. Edges to
// unknown tasks and self-loops are not included; Validate reports those.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, t := range g.tasks {
		for _, dep := range g.parents[t.ID] {
			out = append(out, Edge{From: dep, To: t.ID})
		}
	}
	return out
}

// Ancestors returns the full transitive dependency set of the task: every
// task reachable backward through the edge relation. An unknown id yields an
// empty set.
func (g *Graph) Ancestors(id string) map[string]struct{} {
	return g.reach(id, g.parents)
}

// Descendants returns the full transitive dependent set of the task: every
// task reachable forward through the edge relation. An unknown id yields an
// empty set.
func (g *Graph) Descendants(id string) map[string]struct{} {
	return g.reach(id, g.children)
}

func (g *Graph) reach(id string, adj map[string][]string) map[string]struct{} {
	out := make(map[string]struct{})
	if _, ok := g.byID[id]; !ok {
		return out
	}
	queue := append([]string(nil), adj[id]...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, seen := out[cur]; seen {
			continue
		}
		out[cur] = struct{}{}
		queue = append(queue, adj[cur]...)
	}
	return out
}

// Roots returns the tasks with no declared dependencies, in task-list order.
func (g *Graph) Roots() []*task.Task {
	var out []*task.Task
	for _, t := range g.tasks {
		if len(t.DependsOn) == 0 {
			out = append(out, t)
		}
	}
	return out
}

// Leaves returns the tasks nothing depends on, in task-list order.
func (g *Graph) Leaves() []*task.Task {
	var out []*task.Task
	for _, t := range g.tasks {
		if len(g.children[t.ID]) == 0 {
			out = append(out, t)
		}
	}
	return out
}

// TotalTime returns the sum of all task estimates in seconds, i.e. the wall
// clock for fully sequential execution.
func (g *Graph) TotalTime() float64 {
	var total float64
	for _, t := range g.tasks {
		total += t.EstimatedTime
	}
	return total
}
