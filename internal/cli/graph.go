package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskforge-dev/taskforge/internal/viz"
)

var graphFormat string

var graphCmd = &cobra.Command{
	Use:   "graph <plan-file>",
	Short: "Render the dependency graph as text, Mermaid, or DOT",
	Long: `Graph renders the plan's dependency structure for humans.

Formats:
  text     indented parallel levels (requires a valid graph)
  mermaid  Mermaid 'graph TD' flowchart syntax
  dot      Graphviz digraph syntax

Examples:
  taskforge graph plan.json
  taskforge graph plan.json --format mermaid > plan.mmd
  taskforge graph plan.json --format dot | dot -Tsvg -o plan.svg`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().StringVarP(&graphFormat, "format", "f", "text", "output format (text, mermaid, dot)")
}

func runGraph(cmd *cobra.Command, args []string) error {
	_, g, err := loadPlan(args[0])
	if err != nil {
		return err
	}

	switch graphFormat {
	case "text":
		out, err := viz.Text(g)
		if err != nil {
			return err
		}
		fmt.Print(out)
	case "mermaid":
		fmt.Print(viz.Mermaid(g))
	case "dot":
		fmt.Print(viz.DOT(g))
	default:
		return fmt.Errorf("unknown format: %s (must be text, mermaid, or dot)", graphFormat)
	}
	return nil
}
