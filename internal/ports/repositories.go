package ports

import (
	"context"

	"github.com/emiliopalmerini/timesage/internal/domain"
)

// WeekRepository stores ingested weekly aggregates. Trained model state is
// never persisted; only the raw inputs are.
type WeekRepository interface {
	UpsertBatch(ctx context.Context, weeks []domain.WeekData) error
	ListRecent(ctx context.Context, limit int) ([]domain.WeekData, error)
}

// FeedbackRepository keeps an audit trail of recorded prediction errors.
type FeedbackRepository interface {
	Create(ctx context.Context, record *domain.PredictionError) error
	ListByCategory(ctx context.Context, category string, limit int) ([]*domain.PredictionError, error)
}
