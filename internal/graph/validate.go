package graph

import (
	"fmt"
	"strings"
)

// Validate checks the graph for structural problems and returns one
// diagnostic string per problem found. It reports, in order: directed cycles
// (one concrete cycle, as a sequence of task descriptions), dependencies on
// non-existent tasks, self-loops, and duplicate task IDs. Validation never
// mutates the graph.
func (g *Graph) Validate() (bool, []string) {
	var issues []string

	if cycle := g.findCycle(); len(cycle) > 0 {
		labels := make([]string, 0, len(cycle))
		for _, id := range cycle {
			labels = append(labels, g.label(id))
		}
		issues = append(issues, "dependency cycle detected: "+strings.Join(labels, " -> "))
	}

	for _, t := range g.tasks {
		for _, dep := range g.missing[t.ID] {
			issues = append(issues, fmt.Sprintf("task %s depends on non-existent task %s", t.ID, dep))
		}
	}

	for _, id := range g.selfLoops {
		issues = append(issues, fmt.Sprintf("task %s depends on itself", id))
	}

	for _, id := range g.duplicates {
		issues = append(issues, fmt.Sprintf("duplicate task id: %s", id))
	}

	return len(issues) == 0, issues
}

// label prefers the task description for human-facing messages, falling back
// to the id.
func (g *Graph) label(id string) string {
	if t, ok := g.byID[id]; ok && t.Description != "" {
		return t.Description
	}
	return id
}

// findCycle extracts one concrete cycle as a closed id path (first element
// repeated at the end), or nil if the graph is acyclic. Traversal follows
// task-list order so the witness is stable. Self-loops are excluded here and
// reported separately for a clearer message.
func (g *Graph) findCycle() []string {
	const (
		white = iota // unvisited
		gray         // on the current DFS stack
		black        // fully explored
	)

	color := make(map[string]int, len(g.tasks))
	parent := make(map[string]string, len(g.tasks))

	var cycle []string
	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = gray
		for _, next := range g.children[id] {
			switch color[next] {
			case white:
				parent[next] = id
				if dfs(next) {
					return true
				}
			case gray:
				// Back-edge id -> next closes a cycle. Walk parents back to next.
				path := []string{id}
				for cur := id; cur != next; {
					cur = parent[cur]
					path = append(path, cur)
				}
				for i := len(path) - 1; i >= 0; i-- {
					cycle = append(cycle, path[i])
				}
				cycle = append(cycle, next)
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, t := range g.tasks {
		if color[t.ID] == white && dfs(t.ID) {
			break
		}
	}
	return cycle
}

// mustBeValid converts validation issues into the single loud failure mode
// used by the ordering queries.
func (g *Graph) mustBeValid() error {
	ok, issues := g.Validate()
	if ok {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidGraph, strings.Join(issues, "; "))
}
