package models

import "time"

// FetchOutcome — итог загрузки одной ленты в рамках одного прогона агрегации.
// Пишется в журнал загрузок и публикуется в Kafka.
type FetchOutcome struct {
	RunID      string    `json:"run_id"`
	Position   int       `json:"position"`
	FeedName   string    `json:"feed_name"`
	FeedURL    string    `json:"feed_url"`
	OK         bool      `json:"ok"`
	Error      string    `json:"error,omitempty"`
	Articles   int       `json:"articles"`
	DurationMS int64     `json:"duration_ms"`
	FetchedAt  time.Time `json:"fetched_at"`
}
