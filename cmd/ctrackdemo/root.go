// Command ctrackdemo runs a handful of workloads instrumented with
// ctrack and prints the resulting tables, translating
// original_source/examples/*.cpp into Go subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "ctrackdemo",
	Short:        "Runs sample workloads instrumented with ctrack",
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(basicCmd)
	rootCmd.AddCommand(diamondCmd)
	rootCmd.AddCommand(threadsCmd)
}
