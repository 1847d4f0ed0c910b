package kafka

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

type MessageHandler func(ctx context.Context, key, value []byte) error

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	reader  messageReader
	backoff time.Duration
	logger  *log.Entry
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return newConsumer(reader, log.Fields{"topic": topic, "group": groupID})
}

func newConsumer(reader messageReader, fields log.Fields) *Consumer {
	return &Consumer{
		reader:  reader,
		backoff: time.Second,
		logger:  log.WithField("component", "kafka-consumer").WithFields(fields),
	}
}

// Consume feeds every message to handler until ctx is cancelled. Handler
// errors are logged and the offset still advances. A closed reader ends
// consumption without error.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			c.logger.WithError(err).Warn("failed to read message")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff):
			}
			continue
		}

		logger := c.logger.WithFields(log.Fields{
			"key":       string(msg.Key),
			"partition": msg.Partition,
			"offset":    msg.Offset,
		})
		if err := handler(ctx, msg.Key, msg.Value); err != nil {
			logger.WithError(err).Error("failed to handle message")
			continue
		}
		logger.Debug("message handled")
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
