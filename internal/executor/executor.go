// Package executor drives a validated task graph to completion, batch by
// batch. It owns all real concurrency and the completed-set; the graph only
// supplies structure. A batch runs to a terminal state before the next batch
// starts, because batch membership assumes full completion of prior batches.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/taskforge-dev/taskforge/internal/graph"
	"github.com/taskforge-dev/taskforge/internal/task"
)

// Runner executes the actual work of a single task. What that work means is
// entirely the runner's business; the executor only sequences it.
type Runner interface {
	Run(ctx context.Context, t *task.Task) (*task.Output, error)
}

// Options tunes executor behavior.
type Options struct {
	// Workers bounds concurrent tasks within a batch. Zero or negative
	// means unbounded (the batch size is the natural limit).
	Workers int

	// SkipDescendants, when set, marks every transitive descendant of a
	// failed task as skipped. When unset, dependents are skipped lazily
	// in their own batch once their dependencies turn out incomplete.
	SkipDescendants bool
}

// Result summarizes an execution run.
type Result struct {
	Completed int           `json:"completed"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Cancelled int           `json:"cancelled"`
	Batches   int           `json:"batches"`
	WallTime  time.Duration `json:"wall_time"`
}

// Executor runs a task graph with a bounded goroutine pool per batch.
type Executor struct {
	graph  *graph.Graph
	runner Runner
	opts   Options
	logger *slog.Logger

	mu        sync.Mutex
	completed map[string]struct{}
}

// New creates an executor. The graph must validate; Run fails loudly
// otherwise. A nil logger disables logging.
func New(g *graph.Graph, runner Runner, opts Options, logger *slog.Logger) (*Executor, error) {
	if g == nil {
		return nil, fmt.Errorf("nil graph")
	}
	if runner == nil {
		return nil, fmt.Errorf("nil runner")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{
		graph:     g,
		runner:    runner,
		opts:      opts,
		logger:    logger,
		completed: make(map[string]struct{}),
	}, nil
}

// Run executes all batches in order. Within a batch, tasks start in priority
// order (higher first) and run concurrently up to the worker bound. Tasks
// whose dependencies did not all complete are skipped, never run.
func (e *Executor) Run(ctx context.Context) (*Result, error) {
	batches, err := e.graph.ParallelBatches()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			e.cancelRemaining()
			return e.result(len(batches), start), err
		}
		e.logger.Debug("starting batch", "batch", i+1, "tasks", len(batch))
		e.runBatch(ctx, batch)
	}
	return e.result(len(batches), start), nil
}

func (e *Executor) runBatch(ctx context.Context, batch []*task.Task) {
	ordered := make([]*task.Task, len(batch))
	copy(ordered, batch)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	workers := e.opts.Workers
	if workers <= 0 {
		workers = len(ordered)
	}
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for _, t := range ordered {
		e.mu.Lock()
		runnable := t.Status == task.StatusPending && e.depsCompletedLocked(t)
		if t.Status == task.StatusPending && !runnable {
			// A dependency failed or was skipped without eager propagation.
			if err := t.Transition(task.StatusSkipped); err != nil {
				e.logger.Warn("skip transition rejected", "task", t.ID, "error", err)
			}
		}
		e.mu.Unlock()
		if !runnable {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(t *task.Task) {
			defer wg.Done()
			defer func() { <-sem }()
			e.runTask(ctx, t)
		}(t)
	}
	wg.Wait()
}

func (e *Executor) runTask(ctx context.Context, t *task.Task) {
	e.mu.Lock()
	if err := t.Transition(task.StatusReady); err == nil {
		err = t.Transition(task.StatusRunning)
		if err != nil {
			e.mu.Unlock()
			e.logger.Warn("run transition rejected", "task", t.ID, "error", err)
			return
		}
	} else {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	began := time.Now()
	out, err := e.runner.Run(ctx, t)

	e.mu.Lock()
	defer e.mu.Unlock()

	elapsed := time.Since(began).Seconds()
	switch {
	case err != nil:
		e.failLocked(t, err.Error(), elapsed)
	case out == nil || !out.Success:
		msg := "task reported failure"
		if out != nil && out.Error != "" {
			msg = out.Error
		}
		e.failLocked(t, msg, elapsed)
	default:
		if terr := t.Complete(*out); terr != nil {
			e.logger.Warn("complete transition rejected", "task", t.ID, "error", terr)
			return
		}
		e.completed[t.ID] = struct{}{}
		e.logger.Debug("task completed", "task", t.ID, "seconds", elapsed)
	}
}

// failLocked records a failure and, under the eager policy, skips every
// still-pending transitive descendant. Caller holds e.mu.
func (e *Executor) failLocked(t *task.Task, msg string, elapsed float64) {
	if err := t.Fail(msg, elapsed); err != nil {
		e.logger.Warn("fail transition rejected", "task", t.ID, "error", err)
		return
	}
	e.logger.Warn("task failed", "task", t.ID, "error", msg)

	if !e.opts.SkipDescendants {
		return
	}
	for id := range e.graph.Descendants(t.ID) {
		d, ok := e.graph.Task(id)
		if !ok || d.Status != task.StatusPending {
			continue
		}
		if err := d.Transition(task.StatusSkipped); err != nil {
			e.logger.Warn("skip transition rejected", "task", d.ID, "error", err)
		}
	}
}

func (e *Executor) depsCompletedLocked(t *task.Task) bool {
	for _, dep := range t.DependsOn {
		if _, ok := e.completed[dep]; !ok {
			return false
		}
	}
	return true
}

func (e *Executor) cancelRemaining() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range e.graph.Tasks() {
		if !t.Status.IsTerminal() && t.Status != task.StatusRunning {
			if err := t.Transition(task.StatusCancelled); err != nil {
				e.logger.Warn("cancel transition rejected", "task", t.ID, "error", err)
			}
		}
	}
}

func (e *Executor) result(batches int, start time.Time) *Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := &Result{Batches: batches, WallTime: time.Since(start)}
	for _, t := range e.graph.Tasks() {
		switch t.Status {
		case task.StatusCompleted:
			res.Completed++
		case task.StatusFailed:
			res.Failed++
		case task.StatusSkipped:
			res.Skipped++
		case task.StatusCancelled:
			res.Cancelled++
		}
	}
	return res
}
