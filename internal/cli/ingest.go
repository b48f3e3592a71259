package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/timesage/internal/adapters/turso"
	"github.com/emiliopalmerini/timesage/internal/app"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [input.json]",
	Short: "Store weekly aggregates in the database",
	Long: `Upsert the weeks in the input document into the configured database.
Later predict runs can load them with --from-db instead of a file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	input, err := readInput(inputPath(args))
	if err != nil {
		return err
	}
	if len(input.Weeks) == 0 {
		return fmt.Errorf("no weeks in input")
	}

	cfg, err := app.NewConfig()
	if err != nil {
		return err
	}
	if cfg.TursoDatabaseURL == "" {
		return fmt.Errorf("TIMESAGE_TURSO_DATABASE_URL is not set")
	}

	db, err := turso.NewDB(cfg.TursoDatabaseURL, cfg.TursoAuthToken)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repo := turso.NewWeekRepository(db)
	if err := repo.UpsertBatch(context.Background(), input.Weeks); err != nil {
		return err
	}

	fmt.Printf("Stored %d weeks\n", len(input.Weeks))
	return nil
}
