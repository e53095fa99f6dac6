package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"rssreader/internal/domain"
	"rssreader/internal/models"
)

// ErrAggregation возвращается, если одна из задач агрегации завершилась
// непредвиденно. Обычные ошибки лент сюда не относятся.
var ErrAggregation = errors.New("aggregation failed")

const sinkTimeout = 5 * time.Second

type Aggregator struct {
	processor FeedProcessor
	sinks     []OutcomeSink
	log       *slog.Logger
}

func NewAggregator(processor FeedProcessor, log *slog.Logger, sinks ...OutcomeSink) *Aggregator {
	return &Aggregator{
		processor: processor,
		sinks:     lo.Compact(sinks),
		log:       log,
	}
}

// AggregateAll параллельно загружает все ленты и возвращает результаты в том
// же порядке, что и источники. Результат содержит ровно одну запись на
// источник. Отмена ctx не прерывает уже начатые загрузки.
func (a *Aggregator) AggregateAll(ctx context.Context, sources []domain.FeedSource, diagnostic bool) ([]domain.FeedResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := a.log.With(
		slog.String("component", "aggregator"),
		slog.String("run_id", runID),
	)
	log.Info("Starting aggregation", slog.Int("feeds", len(sources)))

	fetchCtx := context.WithoutCancel(ctx)
	results := make([]domain.FeedResult, len(sources))
	durations := make([]time.Duration, len(sources))

	var g errgroup.Group
	for i, source := range sources {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: feed %q: %v", ErrAggregation, source.Name, r)
				}
			}()
			taskStart := time.Now()
			results[i] = a.processor.ProcessFeed(fetchCtx, source, diagnostic)
			durations[i] = time.Since(taskStart)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("Aggregation failed", slog.Any("error", err))
		return nil, err
	}
	aggregationDuration.Observe(time.Since(start).Seconds())

	failed := lo.CountBy(results, func(r domain.FeedResult) bool { return r.Failed() })
	log.Info("Aggregation completed",
		slog.Int("feeds", len(results)),
		slog.Int("failed", failed),
		slog.Duration("duration", time.Since(start)),
	)

	a.record(ctx, log, outcomes(runID, sources, results, durations, time.Now()))
	return results, nil
}

// record передаёт итоги прогона всем получателям. Ошибки получателей только
// логируются и на ответ не влияют.
func (a *Aggregator) record(ctx context.Context, log *slog.Logger, batch []models.FetchOutcome) {
	if len(a.sinks) == 0 || len(batch) == 0 {
		return
	}
	sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkTimeout)
	defer cancel()

	for _, sink := range a.sinks {
		if err := sink.Record(sinkCtx, batch); err != nil {
			sinkErrors.WithLabelValues(sink.Name()).Inc()
			log.Warn("Failed to record fetch outcomes",
				slog.String("sink", sink.Name()),
				slog.Any("error", err),
			)
		}
	}
}

func outcomes(
	runID string,
	sources []domain.FeedSource,
	results []domain.FeedResult,
	durations []time.Duration,
	fetchedAt time.Time,
) []models.FetchOutcome {
	return lo.Map(results, func(r domain.FeedResult, i int) models.FetchOutcome {
		return models.FetchOutcome{
			RunID:      runID,
			Position:   i,
			FeedName:   sources[i].Name,
			FeedURL:    sources[i].URL,
			OK:         !r.Failed(),
			Error:      r.Error,
			Articles:   len(r.Articles),
			DurationMS: durations[i].Milliseconds(),
			FetchedAt:  fetchedAt.UTC(),
		}
	})
}
