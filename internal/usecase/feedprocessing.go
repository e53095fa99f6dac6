package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"rssreader/internal/domain"
	"rssreader/internal/normalizer"
)

const (
	failureDescription = "Error loading feed"
	isoLayout          = "2006-01-02T15:04:05.000Z"
)

type FeedProcessingUseCase struct {
	fetcher FeedFetcher
	parser  FeedParser
	log     *slog.Logger
	now     func() time.Time
}

func NewFeedProcessingUseCase(
	fetcher FeedFetcher,
	parser FeedParser,
	log *slog.Logger,
) *FeedProcessingUseCase {
	return &FeedProcessingUseCase{
		fetcher: fetcher,
		parser:  parser,
		log:     log,
		now:     time.Now,
	}
}

// ProcessFeed выполняет полный цикл для одной ленты: получение, парсинг и
// нормализация. Любая ошибка, включая панику парсера, превращается в
// ошибочный FeedResult и дальше не распространяется.
func (uc *FeedProcessingUseCase) ProcessFeed(ctx context.Context, source domain.FeedSource, diagnostic bool) (result domain.FeedResult) {
	start := time.Now()
	log := uc.log.With(
		slog.String("component", "feed-processor"),
		slog.String("feed", source.Name),
		slog.String("url", source.URL),
	)
	log.Info("Fetching feed")

	defer func() {
		if r := recover(); r != nil {
			log.Error("Feed processing panicked", slog.Any("panic", r))
			result = uc.failure(source, fmt.Errorf("panic while processing feed: %v", r))
		}
		outcome := outcomeSuccess
		if result.Failed() {
			outcome = outcomeFailure
		} else {
			feedArticles.WithLabelValues(source.Name).Set(float64(len(result.Articles)))
		}
		feedFetchTotal.WithLabelValues(source.Name, outcome).Inc()
		feedFetchDuration.WithLabelValues(source.Name).Observe(time.Since(start).Seconds())
	}()

	feed, stage, err := uc.load(ctx, source.URL)
	if err != nil {
		log.Error("Error fetching feed",
			slog.String("stage", stage),
			slog.Any("error", err),
		)
		return uc.failure(source, err)
	}

	articles := normalizer.NormalizeAll(feed.Items, feed.Title, diagnostic)
	log.Debug("Feed items normalized",
		slog.String("stage", "normalize"),
		slog.Int("articles", len(articles)),
	)

	result = domain.FeedResult{
		Name:          source.Name,
		Title:         firstNonBlank(feed.Title, source.Name),
		Description:   feed.Description,
		Link:          firstNonBlank(feed.Link, source.URL),
		Articles:      articles,
		LastBuildDate: firstNonBlank(feed.LastBuildDate, uc.timestamp()),
	}
	log.Info("Feed processing completed",
		slog.Int("articles", len(articles)),
		slog.Duration("duration", time.Since(start)),
	)
	return result
}

func (uc *FeedProcessingUseCase) load(ctx context.Context, url string) (*domain.Feed, string, error) {
	reader, err := uc.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, "fetch", err
	}
	defer reader.Close()

	feed, err := uc.parser.Parse(ctx, reader)
	if err != nil {
		return nil, "parse", err
	}
	return feed, "", nil
}

func (uc *FeedProcessingUseCase) failure(source domain.FeedSource, err error) domain.FeedResult {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = "unknown error"
	}
	return domain.FeedResult{
		Name:          source.Name,
		Title:         source.Name,
		Description:   failureDescription,
		Link:          source.URL,
		Articles:      []domain.Article{},
		Error:         msg,
		LastBuildDate: uc.timestamp(),
	}
}

func (uc *FeedProcessingUseCase) timestamp() string {
	return uc.now().UTC().Format(isoLayout)
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
