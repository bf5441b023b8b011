package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskforge-dev/taskforge/internal/executor"
)

var (
	runWorkers int
	runScale   float64
	runNoSkip  bool
)

var runCmd = &cobra.Command{
	Use:   "run <plan-file>",
	Short: "Execute a plan batch by batch with the simulation runner",
	Long: `Run drives the plan's parallel batches with a bounded worker pool. Each
batch completes before the next starts, so no task ever runs before all of
its dependencies.

The built-in runner simulates work by sleeping a scaled fraction of each
task's estimate; it is meant for rehearsing a schedule, not doing real work.

Examples:
  taskforge run plan.json
  taskforge run plan.json --workers 8 --scale 0
  taskforge run plan.json --no-skip   # leave dependents of failed tasks to their own batch`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "max concurrent tasks per batch (0 = config default)")
	runCmd.Flags().Float64Var(&runScale, "scale", -1, "simulated seconds per estimated second (negative = config default)")
	runCmd.Flags().BoolVar(&runNoSkip, "no-skip", false, "do not eagerly skip descendants of failed tasks")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	_, g, err := loadPlan(args[0])
	if err != nil {
		return err
	}

	opts := executor.Options{
		Workers:         cfg.Executor.Workers,
		SkipDescendants: cfg.Executor.SkipDescendants && !runNoSkip,
	}
	if runWorkers > 0 {
		opts.Workers = runWorkers
	}
	scale := cfg.Executor.SimulationScale
	if runScale >= 0 {
		scale = runScale
	}

	exec, err := executor.New(g, executor.SimulatedRunner{Scale: scale}, opts, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received interrupt signal, cancelling run...")
		cancel()
	}()

	result, err := exec.Run(ctx)
	if result != nil {
		fmt.Printf("completed %d | failed %d | skipped %d | cancelled %d | %d batches in %s\n",
			result.Completed, result.Failed, result.Skipped, result.Cancelled,
			result.Batches, result.WallTime.Round(time.Millisecond))
	}
	if err != nil {
		return fmt.Errorf("run aborted: %w", err)
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d task(s) failed", result.Failed)
	}
	return nil
}
