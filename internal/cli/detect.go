package cli

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/timesage/internal/anomaly"
	"github.com/emiliopalmerini/timesage/internal/domain"
)

var detectCmd = &cobra.Command{
	Use:   "detect [input.json]",
	Short: "Flag anomalous timesheet entries",
	Long: `Train an isolation forest on the entries in the input document and
print the flagged entries as JSON. Needs at least 20 entries.

Examples:
  timesage detect entries.json
  timesage detect --contamination 0.05 entries.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDetect,
}

var (
	detectContamination float64
	detectSeed          int64
)

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().Float64Var(&detectContamination, "contamination", anomaly.DefaultContamination, "Expected share of anomalies")
	detectCmd.Flags().Int64Var(&detectSeed, "seed", 0, "Random seed (0 = time-based)")
}

func runDetect(cmd *cobra.Command, args []string) error {
	input, err := readInput(inputPath(args))
	if err != nil {
		return err
	}

	if len(input.Timesheets) == 0 {
		return printJSON(map[string][]domain.Anomaly{"anomalies": {}})
	}

	var rng *rand.Rand
	if detectSeed != 0 {
		rng = rand.New(rand.NewSource(detectSeed))
	}

	detector := anomaly.NewDetector(detectContamination, rng)
	if err := detector.Train(input.Timesheets); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	anomalies, err := detector.Detect(input.Timesheets)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	return printJSON(map[string][]domain.Anomaly{"anomalies": anomalies})
}
