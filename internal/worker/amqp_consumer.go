package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/flicky/go-marketplace-api/internal/events"
)

type AMQPConsumer struct {
	channel *amqp.Channel
	worker  *SalesWorker
	log     *slog.Logger
	done    chan struct{}
}

func NewAMQPConsumer(ch *amqp.Channel, worker *SalesWorker, log *slog.Logger) *AMQPConsumer {
	return &AMQPConsumer{channel: ch, worker: worker, log: log, done: make(chan struct{})}
}

func (c *AMQPConsumer) Start(ctx context.Context) error {
	if err := events.DeclareTopology(c.channel); err != nil {
		return err
	}
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}
	msgs, err := c.channel.Consume(events.OrderPlacedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				c.processMessage(ctx, msg)
			case <-c.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	c.log.Info("sales worker started", "transport", "amqp", "queue", events.OrderPlacedQueue)
	return nil
}

func (c *AMQPConsumer) Stop() { close(c.done) }

func (c *AMQPConsumer) processMessage(ctx context.Context, msg amqp.Delivery) {
	err := c.worker.Handle(ctx, msg.Body)
	switch {
	case err == nil:
		_ = msg.Ack(false)
	case errors.Is(err, ErrMalformed):
		c.log.Error("drop malformed message", "message_id", msg.MessageId, "error", err)
		_ = msg.Nack(false, false) // → DLQ
	default:
		c.log.Error("apply order to feed", "message_id", msg.MessageId, "error", err)
		_ = msg.Nack(false, !msg.Redelivered)
	}
}
