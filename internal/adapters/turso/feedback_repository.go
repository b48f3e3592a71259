package turso

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/emiliopalmerini/timesage/internal/domain"
)

// FeedbackRepository persists prediction errors as an audit trail.
type FeedbackRepository struct {
	db *sql.DB
}

func NewFeedbackRepository(db *sql.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Create(ctx context.Context, record *domain.PredictionError) error {
	var contextJSON sql.NullString
	if record.Context != nil {
		data, err := json.Marshal(record.Context)
		if err != nil {
			return fmt.Errorf("failed to marshal context: %w", err)
		}
		contextJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prediction_errors (id, category, predicted_value, actual_value, error, context, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.Category,
		record.PredictedValue,
		record.ActualValue,
		record.Error,
		contextJSON,
		record.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert prediction error: %w", err)
	}
	return nil
}

// ListByCategory returns the most recent records for a category, newest first.
func (r *FeedbackRepository) ListByCategory(ctx context.Context, category string, limit int) ([]*domain.PredictionError, error) {
	return withRetry(ctx, 3, func() ([]*domain.PredictionError, error) {
		rows, err := r.db.QueryContext(ctx, `
			SELECT id, category, predicted_value, actual_value, error, context, created_at
			FROM prediction_errors
			WHERE category = ?
			ORDER BY created_at DESC
			LIMIT ?
		`, category, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list prediction errors: %w", err)
		}
		defer rows.Close()

		var records []*domain.PredictionError
		for rows.Next() {
			record, err := scanPredictionError(rows)
			if err != nil {
				return nil, err
			}
			records = append(records, record)
		}
		return records, rows.Err()
	})
}

func scanPredictionError(rows *sql.Rows) (*domain.PredictionError, error) {
	var record domain.PredictionError
	var contextJSON sql.NullString
	var createdAt string

	err := rows.Scan(
		&record.ID,
		&record.Category,
		&record.PredictedValue,
		&record.ActualValue,
		&record.Error,
		&contextJSON,
		&createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan prediction error: %w", err)
	}

	if contextJSON.Valid {
		if err := json.Unmarshal([]byte(contextJSON.String), &record.Context); err != nil {
			return nil, fmt.Errorf("failed to unmarshal context: %w", err)
		}
	}
	record.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &record, nil
}
