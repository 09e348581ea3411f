package repository

import (
	"context"
	"fmt"

	"TradePulse/pkg/kafka"
)

// KafkaPublisher emits engine events as JSON messages on one topic,
// keyed so all events for a symbol land on the same partition.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *kafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, key string, event any) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(key), event); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NopPublisher is used when no brokers are configured; events are
// dropped silently (the engine still logs them).
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
func (NopPublisher) Close() error                               { return nil }
