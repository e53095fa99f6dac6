// Package events публикует итоги загрузки лент в Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	kfk "github.com/Fau1con/kafkawrapper"

	"rssreader/internal/models"
)

// Producer — часть клиента Kafka, которая нужна публикатору.
type Producer interface {
	SendMessage(ctx context.Context, topic string, data []byte) error
}

type Publisher struct {
	producer Producer
	topic    string
	log      *slog.Logger
}

// NewKafkaPublisher подключается к брокерам и возвращает публикатор для topic.
func NewKafkaPublisher(brokers []string, topic string, log *slog.Logger) (*Publisher, error) {
	producer, err := kfk.NewProducer(brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	log.Info("Kafka producer created", slog.Any("brokers", brokers), slog.String("topic", topic))
	return NewPublisher(producer, topic, log), nil
}

func NewPublisher(producer Producer, topic string, log *slog.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		log:      log.With(slog.String("component", "events")),
	}
}

func (p *Publisher) Name() string {
	return "kafka"
}

// Record отправляет по одному сообщению на каждую ленту прогона. Ошибка одного
// сообщения не останавливает отправку остальных.
func (p *Publisher) Record(ctx context.Context, outcomes []models.FetchOutcome) error {
	var errs []error
	for _, o := range outcomes {
		data, err := json.Marshal(o)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to encode outcome for %s: %w", o.FeedName, err))
			continue
		}
		if err := p.producer.SendMessage(ctx, p.topic, data); err != nil {
			p.log.Error(
				"Failed to write message to Kafka",
				slog.String("feed", o.FeedName),
				slog.Any("error", err),
			)
			errs = append(errs, fmt.Errorf("failed to publish outcome for %s: %w", o.FeedName, err))
		}
	}
	if len(errs) == 0 {
		p.log.Debug("Fetch outcomes published", slog.Int("count", len(outcomes)))
	}
	return errors.Join(errs...)
}
