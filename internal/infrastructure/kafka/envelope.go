package kafka

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrUntypedEvent = errors.New("event has no type")

// Typed is implemented by every event the producer accepts.
type Typed interface {
	EventType() string
}

// Envelope is the JSON value of every message on the topic.
type Envelope struct {
	EventType   string          `json:"event_type"`
	Data        json.RawMessage `json:"data"`
	PublishedAt time.Time       `json:"published_at"`
}

// Wrap encodes event into an envelope stamped with at.
func Wrap(event any, at time.Time) ([]byte, error) {
	typed, ok := event.(Typed)
	if !ok || typed.EventType() == "" {
		return nil, fmt.Errorf("%w: %T", ErrUntypedEvent, event)
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", typed.EventType(), err)
	}
	return json.Marshal(Envelope{
		EventType:   typed.EventType(),
		Data:        data,
		PublishedAt: at.UTC(),
	})
}

// Unwrap decodes a message value into its envelope.
func Unwrap(value []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	if env.EventType == "" {
		return nil, ErrUntypedEvent
	}
	return &env, nil
}
