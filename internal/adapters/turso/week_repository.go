package turso

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/emiliopalmerini/timesage/internal/domain"
)

// WeekRepository stores weekly aggregates in the weeks table. The per-project
// breakdown is kept as a JSON column; it is only read back whole.
type WeekRepository struct {
	db *sql.DB
}

func NewWeekRepository(db *sql.DB) *WeekRepository {
	return &WeekRepository{db: db}
}

func (r *WeekRepository) UpsertBatch(ctx context.Context, weeks []domain.WeekData) error {
	if len(weeks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, week := range weeks {
		stats, err := json.Marshal(week.ProjectStats)
		if err != nil {
			return fmt.Errorf("failed to marshal project stats: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO weeks (week, year, total_hours, project_hours, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (year, week) DO UPDATE SET
				total_hours = excluded.total_hours,
				project_hours = excluded.project_hours,
				updated_at = excluded.updated_at
		`, week.Week, week.Year, week.TotalHours, string(stats), now)
		if err != nil {
			return fmt.Errorf("failed to upsert week %d/%d: %w", week.Year, week.Week, err)
		}
	}

	return tx.Commit()
}

// ListRecent returns up to limit weeks in chronological order.
func (r *WeekRepository) ListRecent(ctx context.Context, limit int) ([]domain.WeekData, error) {
	return withRetry(ctx, 3, func() ([]domain.WeekData, error) {
		rows, err := r.db.QueryContext(ctx, `
			SELECT week, year, total_hours, project_hours
			FROM (
				SELECT week, year, total_hours, project_hours
				FROM weeks
				ORDER BY year DESC, week DESC
				LIMIT ?
			)
			ORDER BY year ASC, week ASC
		`, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list weeks: %w", err)
		}
		defer rows.Close()

		var weeks []domain.WeekData
		for rows.Next() {
			var week domain.WeekData
			var stats string
			if err := rows.Scan(&week.Week, &week.Year, &week.TotalHours, &stats); err != nil {
				return nil, fmt.Errorf("failed to scan week: %w", err)
			}
			if err := json.Unmarshal([]byte(stats), &week.ProjectStats); err != nil {
				return nil, fmt.Errorf("failed to unmarshal project stats: %w", err)
			}
			week.TotalMinutes = int(week.TotalHours * 60)
			weeks = append(weeks, week)
		}
		return weeks, rows.Err()
	})
}
