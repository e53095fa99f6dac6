package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"rssreader/api"
	"rssreader/internal/events"
	"rssreader/internal/fetcher"
	"rssreader/internal/infrastructure/config"
	"rssreader/internal/parser"
	transport "rssreader/internal/transport/http"
	"rssreader/internal/usecase"
	"rssreader/storage"
)

const (
	shutdownTimeout  = 10 * time.Second
	connectDBTimeout = 10 * time.Second
)

// NewLogger создаёт логгер по секции logging конфига.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	if cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// services — собранные компоненты и функция их освобождения.
type services struct {
	aggregator *usecase.Aggregator
	history    *usecase.FetchHistoryUseCase
	close      func()
}

func build(ctx context.Context, cfg *config.Config, log *slog.Logger) (*services, error) {
	var (
		sinks   []usecase.OutcomeSink
		history *usecase.FetchHistoryUseCase
		closers []func()
	)

	// Подключение к БД журнала загрузок
	if cfg.StorageEnabled() {
		dbCtx, cancel := context.WithTimeout(ctx, connectDBTimeout)
		defer cancel()

		db, err := storage.NewStorage(dbCtx, cfg.DSN(), log)
		if err != nil {
			log.Error("Error DB connection", slog.Any("error", err))
			return nil, err
		}
		if err := db.Migrate(dbCtx); err != nil {
			db.Close()
			return nil, err
		}
		sinks = append(sinks, db)
		history = usecase.NewFetchHistoryUseCase(db)
		closers = append(closers, db.Close)
	}

	// Инициализация Kafka producer
	if cfg.EventsEnabled() {
		publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topics.FetchEvents, log)
		if err != nil {
			log.Error("Kafka creating producer error", slog.Any("error", err))
			for _, c := range closers {
				c()
			}
			return nil, err
		}
		sinks = append(sinks, publisher)
	}

	processor := usecase.NewFeedProcessingUseCase(
		fetcher.New(cfg.GetConnectTimeout(), cfg.App.UserAgent, log),
		parser.New(log),
		log,
	)

	return &services{
		aggregator: usecase.NewAggregator(processor, log, sinks...),
		history:    history,
		close: func() {
			for _, c := range closers {
				c()
			}
		},
	}, nil
}

// Run запускает HTTP-сервер и блокируется до отмены ctx.
func Run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	svc, err := build(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.close()

	var history transport.FetchHistory
	if svc.history != nil {
		history = svc.history
	}
	handlers := transport.NewHandlers(svc.aggregator, history, transport.Options{
		Title:   cfg.GetAppName(),
		Sources: cfg.Feeds(),
		Debug:   cfg.App.Debug,
	}, log)

	server := &http.Server{
		Addr:         cfg.GetHTTPAddr(),
		Handler:      api.New(handlers, log).Router(),
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server started",
			slog.String("app", cfg.GetAppName()),
			slog.String("addr", server.Addr),
			slog.Int("feeds", len(cfg.App.FeedURLs)),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// FetchOnce выполняет один прогон агрегации и пишет результат в out как JSON.
func FetchOnce(ctx context.Context, cfg *config.Config, log *slog.Logger, debug bool, out io.Writer) error {
	svc, err := build(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.close()

	results, err := svc.aggregator.AggregateAll(ctx, cfg.Feeds(), debug || cfg.App.Debug)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}
