package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskforge-dev/taskforge/internal/planfile"
	"github.com/taskforge-dev/taskforge/internal/resolver"
	"github.com/taskforge-dev/taskforge/internal/store"
)

var (
	analyzeJSON  bool
	analyzeApply bool
	analyzeSave  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <plan-file>",
	Short: "Run the full dependency analysis over a plan",
	Long: `Analyze layers the dependency resolver over the plan's graph: implicit
dependencies inferred from shared resources, optimization suggestions,
time-estimate sanity checks, and bottleneck scoring, bundled into one report.

With --apply, detected implicit dependencies are added to the plan file and
the graph is rebuilt before the rest of the analysis. With --save, the plan
and report are recorded in the history database.

Examples:
  taskforge analyze plan.json
  taskforge analyze plan.json --apply
  taskforge analyze plan.json --json --save`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output the report as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeApply, "apply", false, "write detected implicit dependencies back to the plan file")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "record the plan and report in the history database")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	plan, g, err := loadPlan(args[0])
	if err != nil {
		return err
	}

	ok, issues := g.Validate()
	plan.SetValidation(ok, issues)
	if !ok {
		fmt.Printf("plan has %d structural problem(s); fix them before analysis:\n", len(issues))
		for _, issue := range issues {
			fmt.Printf("  - %s\n", issue)
		}
		return fmt.Errorf("plan failed validation")
	}

	r := resolver.New(plan, thresholdsFromConfig(cfg), logger)

	if analyzeApply {
		found := r.AddImplicitDependencies()
		if len(found) > 0 {
			if err := planfile.Save(plan, args[0]); err != nil {
				return fmt.Errorf("writing updated plan: %w", err)
			}
			fmt.Printf("added %d implicit dependencies to %s\n", len(found), args[0])
		}
	}

	report, err := r.Report()
	if err != nil {
		return err
	}

	if analyzeSave {
		s, err := store.Open(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer s.Close()

		rowID, err := s.SavePlan(plan)
		if err != nil {
			return err
		}
		if err := s.SaveReport(rowID, report); err != nil {
			return err
		}
		logger.Info("saved analysis to history", "row", rowID)
	}

	if analyzeJSON {
		return printJSON(report)
	}
	printReport(report)
	return nil
}

func printReport(r *resolver.Report) {
	fmt.Println("=== Taskforge Analysis ===")
	fmt.Println()

	s := r.Statistics
	fmt.Println("--- Structure ---")
	fmt.Printf("Tasks: %d | Roots: %d | Leaves: %d | Depth: %d | Batches: %d\n",
		s.TaskCount, s.RootCount, s.LeafCount, s.MaxDepth, s.BatchCount)
	fmt.Printf("Sequential: %.0fs | Critical path: %.0fs | Parallel gain: %.1f%%\n",
		s.TotalTime, s.CriticalPathTime, s.TimeSavingsPercent)
	fmt.Println()

	if len(r.ImplicitDependencies) > 0 {
		fmt.Println("--- Implicit dependencies ---")
		for _, dep := range r.ImplicitDependencies {
			fmt.Printf("  %s -> %s: %s\n", dep.CreatorID, dep.DependentID, dep.Reason)
		}
		fmt.Println()
	}

	if len(r.Suggestions) > 0 {
		fmt.Println("--- Suggestions ---")
		for _, sug := range r.Suggestions {
			fmt.Printf("  - %s\n", sug)
		}
		fmt.Println()
	}

	if len(r.TimeWarnings) > 0 {
		fmt.Println("--- Time estimates ---")
		for _, w := range r.TimeWarnings {
			fmt.Printf("  - %s\n", w)
		}
		fmt.Println()
	}

	if len(r.Bottlenecks) > 0 {
		fmt.Println("--- Bottlenecks ---")
		for _, b := range r.Bottlenecks {
			fmt.Printf("  %-40s score %.0f (%d dependents)\n",
				truncate(b.Description, 40), b.Score, b.DependentCount)
			for _, reason := range b.Reasons {
				fmt.Printf("    - %s\n", reason)
			}
		}
		fmt.Println()
	}

	if len(r.ImplicitDependencies) == 0 && len(r.Suggestions) == 0 &&
		len(r.TimeWarnings) == 0 && len(r.Bottlenecks) == 0 {
		fmt.Println("No findings: the plan looks structurally sound.")
	}
}
