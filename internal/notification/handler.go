package notification

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/example/tg-storefront/internal/domain/order"
	"github.com/example/tg-storefront/internal/infrastructure/kafka"
)

// Outcomes reported to the metrics recorder.
const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Mailer delivers the new-order summary.
type Mailer interface {
	SendNewOrder(to []string, e order.OrderSubmitted) error
}

// Recorder counts notification outcomes.
type Recorder interface {
	RecordOrderNotification(outcome string)
}

// Handler emails staff about every submitted order.
type Handler struct {
	mailer     Mailer
	recipients []string
	recorder   Recorder
	logger     *log.Entry
}

// NewHandler creates a new notification handler. recorder may be nil.
func NewHandler(mailer Mailer, recipients []string, recorder Recorder) *Handler {
	return &Handler{
		mailer:     mailer,
		recipients: recipients,
		recorder:   recorder,
		logger:     log.WithField("component", "notifier"),
	}
}

// HandleEvent processes an event from Kafka. Events of other types are
// ignored.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	env, err := kafka.Unwrap(value)
	if err != nil {
		h.logger.WithError(err).WithField("key", string(key)).Warn("dropping malformed event")
		return err
	}

	switch env.EventType {
	case order.EventOrderSubmitted:
		return h.handleOrderSubmitted(env.Data)
	default:
		return nil
	}
}

func (h *Handler) handleOrderSubmitted(data json.RawMessage) error {
	var e order.OrderSubmitted
	if err := json.Unmarshal(data, &e); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", order.EventOrderSubmitted, err)
	}

	logger := h.logger.WithFields(log.Fields{
		"order_id": e.Order.ID,
		"event_id": e.EventID,
	})

	if len(h.recipients) == 0 {
		logger.Warn("no notification recipients configured")
		h.record(OutcomeSkipped)
		return nil
	}

	if err := h.mailer.SendNewOrder(h.recipients, e); err != nil {
		h.record(OutcomeFailed)
		return err
	}

	h.record(OutcomeSent)
	logger.WithField("recipients", len(h.recipients)).Info("order notification sent")
	return nil
}

func (h *Handler) record(outcome string) {
	if h.recorder != nil {
		h.recorder.RecordOrderNotification(outcome)
	}
}
