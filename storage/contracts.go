package storage

import (
	"context"

	"rssreader/internal/models"
)

// FetchLog — журнал результатов загрузки лент.
type FetchLog interface {
	Name() string
	Record(ctx context.Context, outcomes []models.FetchOutcome) error
	CountFetches(ctx context.Context) (int, error)
	RecentFetches(ctx context.Context, offset, limit int) ([]models.FetchOutcome, error)
	Close()
}
