package cli

import (
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/timesage/internal/domain"
	"github.com/emiliopalmerini/timesage/internal/recommend"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend [input.json]",
	Short: "Suggest time allocation across projects",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	input, err := readInput(inputPath(args))
	if err != nil {
		return err
	}

	engine := recommend.NewEngine()
	return printJSON(domain.AnalysisOutput{Recommendations: engine.Generate(input)})
}
