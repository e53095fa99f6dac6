package usecase

import (
	"context"
	"io"

	"rssreader/internal/domain"
	"rssreader/internal/models"
)

// FeedFetcher — интерфейс для получения данных из источника.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// FeedParser — интерфейс для парсинга данных в доменную модель.
type FeedParser interface {
	Parse(ctx context.Context, reader io.Reader) (*domain.Feed, error)
}

// FeedProcessor — обработка одной ленты. Реализация обязана вернуть результат
// для любого исхода, ошибки загрузки передаются через FeedResult.Error.
type FeedProcessor interface {
	ProcessFeed(ctx context.Context, source domain.FeedSource, diagnostic bool) domain.FeedResult
}

// OutcomeSink — получатель итогов прогона агрегации (журнал, очередь).
type OutcomeSink interface {
	Name() string
	Record(ctx context.Context, outcomes []models.FetchOutcome) error
}
