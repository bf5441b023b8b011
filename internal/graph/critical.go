package graph

import "github.com/taskforge-dev/taskforge/internal/task"

// CriticalPathLength returns the length in seconds of the longest weighted
// path through the DAG: the theoretical minimum wall-clock time under
// unlimited parallel capacity. Fails with ErrInvalidGraph on an invalid
// graph; an empty graph has a zero-length critical path.
func (g *Graph) CriticalPathLength() (float64, error) {
	_, length, err := g.longestPath()
	return length, err
}

// CriticalPathTasks returns the task sequence achieving CriticalPathLength,
// from first runnable task to final one. Longest by weight, not hop count.
func (g *Graph) CriticalPathTasks() ([]*task.Task, error) {
	path, _, err := g.longestPath()
	return path, err
}

// longestPath runs the longest-weighted-path DP over a topological order:
// dist[t] = time[t] + max(dist[dependency]), answer = max(dist). Predecessor
// links reconstruct the witness path. Ties keep the earliest candidate in
// topological order, so the result is deterministic.
func (g *Graph) longestPath() ([]*task.Task, float64, error) {
	order, err := g.ExecutionOrder()
	if err != nil {
		return nil, 0, err
	}
	if len(order) == 0 {
		return nil, 0, nil
	}

	dist := make(map[string]float64, len(order))
	prev := make(map[string]string, len(order))

	endID := ""
	var best float64
	for i, t := range order {
		var viaParent float64
		through := ""
		for _, dep := range g.parents[t.ID] {
			if d := dist[dep]; through == "" || d > viaParent {
				viaParent = d
				through = dep
			}
		}
		dist[t.ID] = t.EstimatedTime + viaParent
		if through != "" {
			prev[t.ID] = through
		}
		if i == 0 || dist[t.ID] > best {
			best = dist[t.ID]
			endID = t.ID
		}
	}

	var path []*task.Task
	for id := endID; id != ""; id = prev[id] {
		path = append(path, g.byID[id])
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, best, nil
}

// MaxDepth returns the number of levels in the longest dependency chain by
// hop count (a single task has depth 1; an empty graph depth 0).
func (g *Graph) MaxDepth() (int, error) {
	order, err := g.ExecutionOrder()
	if err != nil {
		return 0, err
	}

	depth := make(map[string]int, len(order))
	max := 0
	for _, t := range order {
		d := 1
		for _, dep := range g.parents[t.ID] {
			if depth[dep]+1 > d {
				d = depth[dep] + 1
			}
		}
		depth[t.ID] = d
		if d > max {
			max = d
		}
	}
	return max, nil
}

// Statistics is the aggregate structural summary of a graph, shaped for
// direct JSON serialization.
type Statistics struct {
	TaskCount          int     `json:"task_count"`
	RootCount          int     `json:"root_count"`
	LeafCount          int     `json:"leaf_count"`
	MaxDepth           int     `json:"max_depth"`
	CriticalPathTime   float64 `json:"critical_path_time"`   // seconds
	TotalTime          float64 `json:"total_time"`           // seconds, fully sequential
	BatchCount         int     `json:"batch_count"`
	TimeSavingsPercent float64 `json:"time_savings_percent"` // (total - critical) / total
}

// Statistics computes the aggregate summary. Fails with ErrInvalidGraph on
// an invalid graph, since depth and critical path are undefined there.
func (g *Graph) Statistics() (Statistics, error) {
	batches, err := g.ParallelBatches()
	if err != nil {
		return Statistics{}, err
	}
	depth, err := g.MaxDepth()
	if err != nil {
		return Statistics{}, err
	}
	critical, err := g.CriticalPathLength()
	if err != nil {
		return Statistics{}, err
	}

	stats := Statistics{
		TaskCount:        len(g.tasks),
		RootCount:        len(g.Roots()),
		LeafCount:        len(g.Leaves()),
		MaxDepth:         depth,
		CriticalPathTime: critical,
		TotalTime:        g.TotalTime(),
		BatchCount:       len(batches),
	}
	if stats.TotalTime > 0 {
		stats.TimeSavingsPercent = (stats.TotalTime - critical) / stats.TotalTime * 100
	}
	return stats, nil
}
