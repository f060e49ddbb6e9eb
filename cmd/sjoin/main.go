// Command sjoin runs a distributed shuffle hash join on a cluster of one coordinator and any
// number of workers.
//
//	sjoin coordinator --workers 4 --port 1643
//	sjoin worker --coordinator-host 10.0.0.1 --port 1644 --input random --seed 42
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "sjoin",
	Short:        "Distributed shuffle hash join",
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(newCoordinatorCmd(), newWorkerCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
