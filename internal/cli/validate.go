package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <plan-file>",
	Short: "Check a plan's dependency graph for structural problems",
	Long: `Validate builds the dependency graph from a plan file and reports every
structural problem found: cycles, references to non-existent tasks,
self-dependencies, and duplicate task IDs.

All problems are reported at once; the command exits non-zero if any exist.

Examples:
  taskforge validate plan.json
  taskforge validate plan.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	plan, g, err := loadPlan(args[0])
	if err != nil {
		return err
	}

	ok, issues := g.Validate()
	plan.SetValidation(ok, issues)

	if ok {
		fmt.Printf("plan %q is valid: %d tasks form a DAG\n", plan.Goal, g.Len())
		return nil
	}

	fmt.Printf("plan %q has %d problem(s):\n", plan.Goal, len(issues))
	for _, issue := range issues {
		fmt.Printf("  - %s\n", issue)
	}
	return fmt.Errorf("plan failed validation")
}
