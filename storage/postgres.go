package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rssreader/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS feed_fetches (
	id          BIGSERIAL PRIMARY KEY,
	run_id      UUID        NOT NULL,
	position    INTEGER     NOT NULL,
	feed_name   TEXT        NOT NULL,
	feed_url    TEXT        NOT NULL,
	ok          BOOLEAN     NOT NULL,
	error       TEXT        NOT NULL DEFAULT '',
	articles    INTEGER     NOT NULL DEFAULT 0,
	duration_ms BIGINT      NOT NULL DEFAULT 0,
	fetched_at  TIMESTAMPTZ NOT NULL,
	UNIQUE (run_id, position)
);
CREATE INDEX IF NOT EXISTS feed_fetches_fetched_at_idx ON feed_fetches (fetched_at DESC);
`

type Storage struct {
	DB  *pgxpool.Pool
	log *slog.Logger
}

func NewStorage(ctx context.Context, dsn string, log *slog.Logger) (*Storage, error) {
	log = log.With(slog.String("component", "fetch-log"))

	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database connection established")
	return &Storage{
		DB:  db,
		log: log,
	}, nil
}

func (s *Storage) Name() string {
	return "postgres"
}

// Migrate создаёт таблицу журнала, если её ещё нет.
func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.DB.Exec(ctx, schema); err != nil {
		s.log.Error(
			"Failed to apply schema",
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Метод для сохранения итогов одного прогона агрегации
func (s *Storage) Record(ctx context.Context, outcomes []models.FetchOutcome) (err error) {
	if len(outcomes) == 0 {
		return nil
	}
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		s.log.Error(
			"Failed to begin transaction",
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				s.log.Error(
					"Failed to rollback transaction",
					slog.Any("error", rollbackErr),
				)
			}
		}
	}()

	batch := &pgx.Batch{}
	query := `
	INSERT INTO feed_fetches (run_id, position, feed_name, feed_url, ok, error, articles, duration_ms, fetched_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (run_id, position) DO NOTHING;
	`
	for _, o := range outcomes {
		batch.Queue(
			query,
			o.RunID,
			o.Position,
			o.FeedName,
			o.FeedURL,
			o.OK,
			o.Error,
			o.Articles,
			o.DurationMS,
			o.FetchedAt,
		)
	}

	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		s.log.Error(
			"Failed to execute batch",
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to execute batch: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		s.log.Error(
			"Failed to commit transaction",
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.Debug("Fetch outcomes saved", slog.Int("count", len(outcomes)))
	return nil
}

func (s *Storage) CountFetches(ctx context.Context) (int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, `SELECT COUNT(*) FROM feed_fetches;`).Scan(&total); err != nil {
		s.log.Error(
			"Failed to count fetches",
			slog.Any("error", err),
		)
		return 0, fmt.Errorf("failed to count fetches: %w", err)
	}
	return total, nil
}

// Метод для выборки записей журнала с пагинацией, новые первыми
func (s *Storage) RecentFetches(ctx context.Context, offset, limit int) ([]models.FetchOutcome, error) {
	query := `SELECT run_id::text, position, feed_name, feed_url, ok, error, articles, duration_ms, fetched_at
	FROM feed_fetches ORDER BY fetched_at DESC, position ASC OFFSET $1 LIMIT $2;`
	rows, err := s.DB.Query(ctx, query, offset, limit)
	if err != nil {
		s.log.Error(
			"Failed to read fetches from database",
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to read fetches from database: %w", err)
	}
	defer rows.Close()

	fetches := []models.FetchOutcome{}
	for rows.Next() {
		o := models.FetchOutcome{}
		err = rows.Scan(
			&o.RunID,
			&o.Position,
			&o.FeedName,
			&o.FeedURL,
			&o.OK,
			&o.Error,
			&o.Articles,
			&o.DurationMS,
			&o.FetchedAt,
		)
		if err != nil {
			s.log.Error(
				"Failed to scan row",
				slog.Any("error", err),
			)
			return nil, fmt.Errorf("unable to scan row: %w", err)
		}
		fetches = append(fetches, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return fetches, nil
}

func (s *Storage) Close() {
	s.log.Info("Closing database connection pool")
	s.DB.Close()
}
