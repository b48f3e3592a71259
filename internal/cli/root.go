// Package cli defines the timesage command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "timesage",
	Short: "Statistical analysis for time-tracking records",
	Long: `timesage analyzes time-tracking records: it forecasts weekly workload,
flags anomalous sessions, suggests how to allocate time across projects,
and learns from prediction feedback.

Run it as an HTTP service with "timesage serve", or one-shot against a
JSON input file with the predict, detect, recommend and productivity
commands.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
