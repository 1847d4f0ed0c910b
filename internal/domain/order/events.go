package order

import "time"

const (
	EventOrderSubmitted = "OrderSubmitted"
)

// OrderSubmitted is published after the shop API accepted an order.
type OrderSubmitted struct {
	EventID        string    `json:"event_id"`
	IdempotencyKey string    `json:"idempotency_key"`
	Order          Order     `json:"order"`
	CustomerType   string    `json:"customer_type,omitempty"`
	Comment        string    `json:"comment,omitempty"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// EventType names the event on the wire.
func (OrderSubmitted) EventType() string {
	return EventOrderSubmitted
}
