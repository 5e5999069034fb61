package repository

import (
	"context"
	"fmt"

	"StockCast/internal/domain/models"
	pkgkafka "StockCast/pkg/kafka"
)

type batchPublisher interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// KafkaForecastPublisher writes forecast events keyed by trading code so all
// events for a symbol land on one partition.
type KafkaForecastPublisher struct {
	producer batchPublisher
	topic    string
}

func NewKafkaForecastPublisher(p *pkgkafka.Producer, topic string) *KafkaForecastPublisher {
	return &KafkaForecastPublisher{producer: p, topic: topic}
}

func (k *KafkaForecastPublisher) PublishForecast(ctx context.Context, events []models.ForecastEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(events))
	for _, ev := range events {
		msgs = append(msgs, pkgkafka.Message{
			Key:   []byte(ev.TradingCode),
			Value: ev,
			Headers: map[string]string{
				"event-id": ev.ID,
				"horizon":  ev.Horizon,
			},
		})
	}
	if err := k.producer.PublishBatch(ctx, k.topic, msgs); err != nil {
		return fmt.Errorf("publish forecast events: %w", err)
	}
	return nil
}

func (k *KafkaForecastPublisher) Close() error {
	return k.producer.Close()
}

// NoopPublisher drops events. Used when kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishForecast(context.Context, []models.ForecastEvent) error { return nil }
func (NoopPublisher) Close() error                                                 { return nil }
