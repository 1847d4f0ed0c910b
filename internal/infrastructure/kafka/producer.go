package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes storefront events as enveloped JSON.
type Producer struct {
	writer messageWriter
	topic  string
	tracer trace.Tracer
	logger *log.Entry
	now    func() time.Time
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return newProducer(writer, topic)
}

func newProducer(writer messageWriter, topic string) *Producer {
	return &Producer{
		writer: writer,
		topic:  topic,
		tracer: otel.Tracer("tg-storefront/kafka"),
		logger: log.WithFields(log.Fields{"component": "kafka-producer", "topic": topic}),
		now:    time.Now,
	}
}

// Publish writes event under key. Messages with the same key land on the
// same partition.
func (p *Producer) Publish(ctx context.Context, key string, event any) error {
	ctx, span := p.tracer.Start(ctx, "kafka.publish", trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()
	span.SetAttributes(
		attribute.String("messaging.destination", p.topic),
		attribute.String("messaging.kafka.message_key", key),
	)

	at := p.now()
	value, err := Wrap(event, at)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  at,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		return fmt.Errorf("failed to write message %s: %w", key, err)
	}

	p.logger.WithField("key", key).Debug("event published")
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
