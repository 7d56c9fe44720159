package events

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
)

type KafkaPublisher struct {
	w *kafka.Writer
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{w: w}
}

// PublishOrderPlaced keys messages by order id so redeliveries of one order
// land on the same partition.
func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, ev OrderPlaced) error {
	body, err := ev.Encode()
	if err != nil {
		return fmt.Errorf("encode order placed: %w", err)
	}
	if err := p.w.WriteMessages(ctx, kafka.Message{Key: []byte(ev.OrderID.String()), Value: body}); err != nil {
		return fmt.Errorf("publish order placed: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }
