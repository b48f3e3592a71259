package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/timesage/internal/adapters/turso"
	"github.com/emiliopalmerini/timesage/internal/app"
	"github.com/emiliopalmerini/timesage/internal/domain"
	"github.com/emiliopalmerini/timesage/internal/learning"
)

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Record a prediction error",
	Long: `Record one predicted/actual pair and print the category's updated
correction factors. When a database is configured, prior records for the
category are loaded first and the new record is persisted.

Examples:
  timesage learn --category forecasting --predicted 42.5 --actual 38.0`,
	RunE: runLearn,
}

var (
	learnCategory  string
	learnPredicted float64
	learnActual    float64
)

func init() {
	rootCmd.AddCommand(learnCmd)

	learnCmd.Flags().StringVarP(&learnCategory, "category", "c", domain.CategoryForecasting, "Prediction category")
	learnCmd.Flags().Float64Var(&learnPredicted, "predicted", 0, "Predicted value")
	learnCmd.Flags().Float64Var(&learnActual, "actual", 0, "Actual value")
	learnCmd.MarkFlagRequired("predicted")
	learnCmd.MarkFlagRequired("actual")
}

func runLearn(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := app.NewConfig()
	if err != nil {
		return err
	}

	module := learning.NewModule(cfg.FeedbackHistorySize)

	var feedbackRepo *turso.FeedbackRepository
	if cfg.TursoDatabaseURL != "" {
		db, err := turso.NewDB(cfg.TursoDatabaseURL, cfg.TursoAuthToken)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		feedbackRepo = turso.NewFeedbackRepository(db)

		history, err := feedbackRepo.ListByCategory(ctx, learnCategory, cfg.FeedbackHistorySize)
		if err != nil {
			return fmt.Errorf("failed to load feedback history: %w", err)
		}
		// ListByCategory is newest first; replay oldest first.
		for i := len(history) - 1; i >= 0; i-- {
			module.Record(*history[i])
		}
	}

	record := domain.PredictionError{
		ID:             uuid.NewString(),
		Category:       learnCategory,
		PredictedValue: learnPredicted,
		ActualValue:    learnActual,
		Error:          learnPredicted - learnActual,
		CreatedAt:      time.Now().UTC(),
	}
	module.Record(record)

	if feedbackRepo != nil {
		if err := feedbackRepo.Create(ctx, &record); err != nil {
			return fmt.Errorf("failed to persist record: %w", err)
		}
	}

	return printJSON(map[string]any{
		"status":                "recorded",
		"correction_factor":     module.CorrectionFactor(learnCategory),
		"confidence_adjustment": module.ConfidenceAdjustment(learnCategory),
	})
}
