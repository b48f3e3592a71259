package cli

import (
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/timesage/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analysis API server",
	Long: `Start the HTTP API server.

Configuration is read from TIMESAGE_-prefixed environment variables;
see the README for the full list.

Examples:
  timesage serve                        # Listen on :8000
  TIMESAGE_ADDR=:3000 timesage serve    # Listen on :3000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := app.NewConfig()
	if err != nil {
		return err
	}
	return app.Run(cfg)
}
