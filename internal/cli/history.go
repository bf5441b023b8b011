package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskforge-dev/taskforge/internal/store"
)

var (
	historyLimit int
	historyShow  int64
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previously analyzed plans",
	Long: `History lists plans recorded with 'taskforge analyze --save', newest
first. Use --show to print the stored report for one entry.

Examples:
  taskforge history
  taskforge history --limit 5
  taskforge history --show 3`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum entries to list")
	historyCmd.Flags().Int64Var(&historyShow, "show", 0, "print the stored report for a history row")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := store.Open(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer s.Close()

	if historyShow > 0 {
		report, err := s.LatestReport(historyShow)
		if err != nil {
			return err
		}
		return printJSON(report)
	}

	records, err := s.ListPlans(historyLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no plans recorded yet; run 'taskforge analyze --save' first")
		return nil
	}

	fmt.Printf("%-4s %-20s %-40s %-6s %-6s\n", "ROW", "WHEN", "GOAL", "TASKS", "VALID")
	for _, r := range records {
		fmt.Printf("%-4d %-20s %-40s %-6d %-6t\n",
			r.RowID, r.CreatedAt.Format("2006-01-02 15:04:05"),
			truncate(r.Goal, 40), r.TaskCount, r.Valid)
	}
	return nil
}
