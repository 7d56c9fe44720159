package events

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	OrderPlacedQueue = "order.placed"
	deadLetterX      = "order.placed.dlx"
	deadLetterQueue  = "order.placed.dlq"
)

// DeclareTopology declares the order.placed queue and its dead letter
// exchange and queue. Safe to call from both publisher and consumer.
func DeclareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(deadLetterX, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(deadLetterQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}
	if err := ch.QueueBind(deadLetterQueue, OrderPlacedQueue, deadLetterX, false, nil); err != nil {
		return fmt.Errorf("bind DLQ: %w", err)
	}
	if _, err := ch.QueueDeclare(OrderPlacedQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    deadLetterX,
		"x-dead-letter-routing-key": OrderPlacedQueue,
	}); err != nil {
		return fmt.Errorf("declare order.placed queue: %w", err)
	}
	return nil
}

type AMQPPublisher struct {
	ch *amqp.Channel
}

func NewAMQPPublisher(ch *amqp.Channel) (*AMQPPublisher, error) {
	if err := DeclareTopology(ch); err != nil {
		return nil, err
	}
	return &AMQPPublisher{ch: ch}, nil
}

func (p *AMQPPublisher) PublishOrderPlaced(ctx context.Context, ev OrderPlaced) error {
	body, err := ev.Encode()
	if err != nil {
		return fmt.Errorf("encode order placed: %w", err)
	}
	err = p.ch.PublishWithContext(ctx, "", OrderPlacedQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    ev.OrderID.String(),
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		return fmt.Errorf("publish order placed: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error { return p.ch.Close() }
