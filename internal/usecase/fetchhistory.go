package usecase

import (
	"context"
	"errors"
	"fmt"

	"rssreader/internal/models"
	"rssreader/internal/pagination"
)

// ErrHistoryDisabled означает, что журнал загрузок не настроен.
var ErrHistoryDisabled = errors.New("fetch history is not configured")

type FetchHistoryStorage interface {
	CountFetches(ctx context.Context) (int, error)
	RecentFetches(ctx context.Context, offset, limit int) ([]models.FetchOutcome, error)
}

type FetchHistoryUseCase struct {
	storage FetchHistoryStorage
}

func NewFetchHistoryUseCase(s FetchHistoryStorage) *FetchHistoryUseCase {
	return &FetchHistoryUseCase{storage: s}
}

// Page возвращает страницу журнала загрузок, новые записи первыми.
func (uc *FetchHistoryUseCase) Page(ctx context.Context, page int) (*pagination.Pagination, error) {
	if uc == nil || uc.storage == nil {
		return nil, ErrHistoryDisabled
	}
	total, err := uc.storage.CountFetches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count fetches: %w", err)
	}

	pag := pagination.New(total, page)
	if total == 0 {
		return pag, nil
	}
	results, err := uc.storage.RecentFetches(ctx, pag.Offset(), pag.PerPage)
	if err != nil {
		return nil, fmt.Errorf("failed to read fetches: %w", err)
	}
	if results != nil {
		pag.Results = results
	}
	return pag, nil
}
