package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/timesage/internal/domain"
	"github.com/emiliopalmerini/timesage/internal/productivity"
)

var productivityCmd = &cobra.Command{
	Use:   "productivity [input.json]",
	Short: "Analyze work patterns and suggest breaks",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProductivity,
}

func init() {
	rootCmd.AddCommand(productivityCmd)
}

func runProductivity(cmd *cobra.Command, args []string) error {
	input, err := readInput(inputPath(args))
	if err != nil {
		return err
	}

	if len(input.Timesheets) == 0 {
		return fmt.Errorf("no timesheet entries in input")
	}

	analyzer := productivity.NewAnalyzer(input.Settings.UserPreferences)
	return printJSON(domain.AnalysisOutput{Productivity: analyzer.Analyze(input.Timesheets)})
}
