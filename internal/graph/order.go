package graph

import (
	"container/heap"
	"fmt"

	"github.com/taskforge-dev/taskforge/internal/task"
)

// ExecutionOrder returns a topological ordering of the tasks via Kahn's
// algorithm. It fails with ErrInvalidGraph if the graph does not validate;
// a partial or arbitrary order is never returned.
//
// Determinism: ties are broken by task-list position, so equal inputs yield
// equal orderings.
func (g *Graph) ExecutionOrder() ([]*task.Task, error) {
	if err := g.mustBeValid(); err != nil {
		return nil, err
	}

	indeg := make(map[string]int, len(g.tasks))
	for _, t := range g.tasks {
		indeg[t.ID] = len(g.parents[t.ID])
	}

	ready := &indexHeap{}
	heap.Init(ready)
	for _, t := range g.tasks {
		if indeg[t.ID] == 0 {
			heap.Push(ready, g.index[t.ID])
		}
	}

	order := make([]*task.Task, 0, len(g.tasks))
	for ready.Len() > 0 {
		t := g.tasks[heap.Pop(ready).(int)]
		order = append(order, t)
		for _, dep := range g.children[t.ID] {
			indeg[dep]--
			if indeg[dep] == 0 {
				heap.Push(ready, g.index[dep])
			}
		}
	}

	// Validate proved acyclicity, so Kahn must consume every node.
	if len(order) != len(g.tasks) {
		return nil, fmt.Errorf("%w: topological sort consumed %d of %d tasks", ErrInvalidGraph, len(order), len(g.tasks))
	}
	return order, nil
}

// ParallelBatches partitions the tasks into ordered levels: every task
// appears in exactly one batch, all of a task's dependencies sit in a
// strictly earlier batch, and each batch is maximal: it holds every task
// whose dependencies are satisfied by the union of all earlier batches.
// This is the coarsest legal parallelization and ignores priority.
func (g *Graph) ParallelBatches() ([][]*task.Task, error) {
	if err := g.mustBeValid(); err != nil {
		return nil, err
	}

	completed := make(map[string]struct{}, len(g.tasks))
	placed := make(map[string]struct{}, len(g.tasks))
	var batches [][]*task.Task

	for len(placed) < len(g.tasks) {
		var batch []*task.Task
		for _, t := range g.tasks {
			if _, done := placed[t.ID]; done {
				continue
			}
			satisfied := true
			for _, dep := range t.DependsOn {
				if _, ok := completed[dep]; !ok {
					satisfied = false
					break
				}
			}
			if satisfied {
				batch = append(batch, t)
			}
		}
		if len(batch) == 0 {
			// Unreachable after mustBeValid; kept as a hard stop against looping forever.
			return nil, fmt.Errorf("%w: no schedulable tasks among %d remaining", ErrInvalidGraph, len(g.tasks)-len(placed))
		}
		for _, t := range batch {
			placed[t.ID] = struct{}{}
		}
		for _, t := range batch {
			completed[t.ID] = struct{}{}
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

// indexHeap is a min-heap of task-list positions, giving Kahn's algorithm a
// stable tie-break.
type indexHeap []int

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
