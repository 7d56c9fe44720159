package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
}

type KafkaConsumer struct {
	reader  MessageReader
	worker  *SalesWorker
	log     *slog.Logger
	cancel  context.CancelFunc
	done    chan struct{}
	backoff time.Duration
}

func NewKafkaConsumer(reader MessageReader, worker *SalesWorker, log *slog.Logger) *KafkaConsumer {
	return &KafkaConsumer{reader: reader, worker: worker, log: log, done: make(chan struct{}), backoff: time.Second}
}

func (c *KafkaConsumer) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)
	go func() {
		defer close(c.done)
		c.run(ctx)
	}()
	c.log.Info("sales worker started", "transport", "kafka")
	return nil
}

// Stop cancels the read loop, waits for it and closes the reader.
func (c *KafkaConsumer) Stop() {
	if c.cancel != nil {
		c.cancel()
		<-c.done
	}
	if err := c.reader.Close(); err != nil {
		c.log.Error("close kafka reader", "error", err)
	}
}

func (c *KafkaConsumer) run(ctx context.Context) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Error("fetch message", "error", err)
			if !sleep(ctx, c.backoff) {
				return
			}
			continue
		}
		if !c.processMessage(ctx, msg) {
			return
		}
	}
}

// processMessage retries transient failures until they succeed, since
// committing a later offset would skip this one. It reports false once ctx
// is done.
func (c *KafkaConsumer) processMessage(ctx context.Context, msg kafka.Message) bool {
	for {
		err := c.worker.Handle(ctx, msg.Value)
		if err == nil {
			break
		}
		if errors.Is(err, ErrMalformed) {
			c.log.Error("drop malformed message", "offset", msg.Offset, "partition", msg.Partition, "error", err)
			break
		}
		c.log.Error("apply order to feed", "offset", msg.Offset, "partition", msg.Partition, "error", err)
		if !sleep(ctx, c.backoff) {
			return false
		}
	}
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.log.Error("commit message", "offset", msg.Offset, "error", err)
	}
	return true
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
