package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	orderJSON   bool
	batchesJSON bool
	statsJSON   bool
)

var orderCmd = &cobra.Command{
	Use:   "order <plan-file>",
	Short: "Print a topological execution order for the plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrder,
}

var batchesCmd = &cobra.Command{
	Use:   "batches <plan-file>",
	Short: "Print the plan's maximal parallel batches",
	Long: `Batches partitions the tasks into ordered levels: every task in a batch
has all of its dependencies in strictly earlier batches, and each batch is
maximal. Tasks in the same batch are safe to execute concurrently.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatches,
}

var statsCmd = &cobra.Command{
	Use:   "stats <plan-file>",
	Short: "Print aggregate graph statistics for the plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	orderCmd.Flags().BoolVar(&orderJSON, "json", false, "output as JSON")
	batchesCmd.Flags().BoolVar(&batchesJSON, "json", false, "output as JSON")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
}

func runOrder(cmd *cobra.Command, args []string) error {
	_, g, err := loadPlan(args[0])
	if err != nil {
		return err
	}

	order, err := g.ExecutionOrder()
	if err != nil {
		return err
	}

	if orderJSON {
		ids := make([]string, 0, len(order))
		for _, t := range order {
			ids = append(ids, t.ID)
		}
		return printJSON(ids)
	}

	for i, t := range order {
		fmt.Printf("%3d. [%s] %s\n", i+1, t.ID, t.Description)
	}
	return nil
}

func runBatches(cmd *cobra.Command, args []string) error {
	_, g, err := loadPlan(args[0])
	if err != nil {
		return err
	}

	batches, err := g.ParallelBatches()
	if err != nil {
		return err
	}

	if batchesJSON {
		ids := make([][]string, 0, len(batches))
		for _, batch := range batches {
			row := make([]string, 0, len(batch))
			for _, t := range batch {
				row = append(row, t.ID)
			}
			ids = append(ids, row)
		}
		return printJSON(ids)
	}

	for i, batch := range batches {
		fmt.Printf("Batch %d (%d task(s)):\n", i+1, len(batch))
		for _, t := range batch {
			fmt.Printf("  [%s] %s\n", t.ID, t.Description)
		}
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	plan, g, err := loadPlan(args[0])
	if err != nil {
		return err
	}

	stats, err := g.Statistics()
	if err != nil {
		return err
	}

	if statsJSON {
		return printJSON(stats)
	}

	fmt.Printf("Plan: %s\n", plan.Goal)
	fmt.Printf("Tasks:          %d (%d roots, %d leaves)\n", stats.TaskCount, stats.RootCount, stats.LeafCount)
	fmt.Printf("Max depth:      %d\n", stats.MaxDepth)
	fmt.Printf("Batches:        %d\n", stats.BatchCount)
	fmt.Printf("Sequential:     %.0fs\n", stats.TotalTime)
	fmt.Printf("Critical path:  %.0fs\n", stats.CriticalPathTime)
	fmt.Printf("Parallel gain:  %.1f%%\n", stats.TimeSavingsPercent)
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
