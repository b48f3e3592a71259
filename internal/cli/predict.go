package cli

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/timesage/internal/adapters/turso"
	"github.com/emiliopalmerini/timesage/internal/app"
	"github.com/emiliopalmerini/timesage/internal/domain"
	"github.com/emiliopalmerini/timesage/internal/forecasting"
)

var predictCmd = &cobra.Command{
	Use:   "predict [input.json]",
	Short: "Forecast next week's workload",
	Long: `Train the forecasting models on the weeks in the input document and
print the forecast as JSON. Reads from stdin when no file is given.

Examples:
  timesage predict weeks.json
  cat weeks.json | timesage predict
  timesage predict --seed 42 weeks.json   # Reproducible forecast
  timesage predict --from-db              # Use weeks stored with ingest`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPredict,
}

var (
	predictSeed   int64
	predictFromDB bool
	predictLimit  int
)

func init() {
	rootCmd.AddCommand(predictCmd)
	predictCmd.Flags().Int64Var(&predictSeed, "seed", 0, "Random seed (0 = time-based)")
	predictCmd.Flags().BoolVar(&predictFromDB, "from-db", false, "Load weeks from the configured database")
	predictCmd.Flags().IntVar(&predictLimit, "limit", 104, "Weeks to load with --from-db")
}

func runPredict(cmd *cobra.Command, args []string) error {
	var input *domain.AnalysisInput
	var err error
	if predictFromDB {
		input, err = loadWeeksFromDB(predictLimit)
	} else {
		input, err = readInput(inputPath(args))
	}
	if err != nil {
		return err
	}

	var rng *rand.Rand
	if predictSeed != 0 {
		rng = rand.New(rand.NewSource(predictSeed))
	}

	var goals map[int]float64
	if input.Settings.UserPreferences != nil {
		goals = input.Settings.UserPreferences.ProjectGoals
	}

	var forecast *domain.Forecast
	if len(input.Weeks) < 8 {
		forecast = forecasting.NaiveForecast(input.Weeks)
	} else {
		model := forecasting.NewModel(rng)
		if err := model.Train(input.Weeks); err != nil {
			return fmt.Errorf("training failed: %w", err)
		}
		forecast, err = model.Predict(input.Weeks)
		if err != nil {
			return fmt.Errorf("prediction failed: %w", err)
		}
	}
	forecasting.ApplyProjectGoals(forecast, goals)

	return printJSON(domain.AnalysisOutput{Forecasting: forecast})
}

func loadWeeksFromDB(limit int) (*domain.AnalysisInput, error) {
	cfg, err := app.NewConfig()
	if err != nil {
		return nil, err
	}
	if cfg.TursoDatabaseURL == "" {
		return nil, fmt.Errorf("TIMESAGE_TURSO_DATABASE_URL is not set")
	}

	db, err := turso.NewDB(cfg.TursoDatabaseURL, cfg.TursoAuthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	weeks, err := turso.NewWeekRepository(db).ListRecent(context.Background(), limit)
	if err != nil {
		return nil, err
	}
	return &domain.AnalysisInput{Weeks: weeks}, nil
}
