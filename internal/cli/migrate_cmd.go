package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/timesage/internal/adapters/turso"
	"github.com/emiliopalmerini/timesage/internal/app"
	"github.com/emiliopalmerini/timesage/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run database migrations",
	Long: `Run database migrations.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).

Examples:
  timesage migrate      # Run all pending migrations
  timesage migrate 1    # Migrate to version 1
  timesage migrate 0    # Rollback all migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

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

	if len(args) == 0 {
		if err := migrate.RunAll(ctx, db); err != nil {
			return err
		}
		version, _, err := migrate.CurrentVersion(ctx, db)
		if err != nil {
			return err
		}
		fmt.Printf("Migrated to version %d\n", version)
		return nil
	}

	targetVersion, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid version number: %s", args[0])
	}

	if err := migrate.EnsureTable(ctx, db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	currentVersion, dirty, err := migrate.CurrentVersion(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in dirty state at version %d, manual intervention required", currentVersion)
	}

	all, err := migrate.Load()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	switch {
	case targetVersion > currentVersion:
		err = migrate.UpTo(ctx, db, all, currentVersion, targetVersion)
	case targetVersion < currentVersion:
		err = migrate.DownTo(ctx, db, all, currentVersion, targetVersion)
	default:
		fmt.Println("Already at target version")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Migrated to version %d\n", targetVersion)
	return nil
}
