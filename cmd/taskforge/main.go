// Taskforge is a CLI for building, validating, and analyzing task-dependency
// execution plans.
package main

import (
	"fmt"
	"os"

	"github.com/taskforge-dev/taskforge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
