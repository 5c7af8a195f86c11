package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/dkosiv/shardpay/internal/domain"
)

// Publisher publishes outbox entries to a Kafka topic. Messages are keyed
// by shard key so events for one account always land on one partition, in
// commit order.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a Kafka publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  1, // retries belong to the outbox drain loop
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Publisher{writer: writer}
}

// Publish sends one entry and waits for broker acknowledgment. The
// transaction id travels in a header so consumers can dedupe without
// parsing the payload.
func (p *Publisher) Publish(ctx context.Context, entry *domain.OutboxEntry) error {
	msg := kafka.Message{
		Key:   []byte(entry.ShardKey),
		Value: entry.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(entry.EventType)},
			{Key: "transaction_id", Value: []byte(entry.TransactionID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish entry %s: %w", entry.EntryID, err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
