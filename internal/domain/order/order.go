package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusNew       Status = "new"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrEmptyOrder    = errors.New("order must have at least one item")
	ErrUnknownStatus = errors.New("unknown order status")
	ErrInvalidStatus = errors.New("invalid order status transition")
)

var statusLabels = map[Status]string{
	StatusNew:       "Новый",
	StatusAccepted:  "Принят",
	StatusRejected:  "Отклонён",
	StatusCompleted: "Выполнен",
}

// validTransitions defines allowed state transitions
var validTransitions = map[Status][]Status{
	StatusNew:       {StatusAccepted, StatusRejected},
	StatusAccepted:  {StatusCompleted, StatusRejected},
	StatusRejected:  {}, // terminal state
	StatusCompleted: {}, // terminal state
}

// ParseStatus accepts only the four statuses the shop API knows.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := statusLabels[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

// Label returns the status name shown to customers.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// CanTransitionTo checks if an order in status s may move to target
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// CheckTransition returns ErrInvalidStatus when the move is not allowed.
func (s Status) CheckTransition(target Status) error {
	if !s.CanTransitionTo(target) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidStatus, s, target)
	}
	return nil
}

// LineItem is one (product, packs) pair of an order or cart validation request.
type LineItem struct {
	ProductID     int64 `json:"product_id"`
	QuantityPacks int   `json:"quantity_packs"`
}

// Request is the payload of POST /api/orders.
type Request struct {
	TelegramUserID       int64      `json:"telegram_user_id"`
	CustomerName         string     `json:"customer_name"`
	CustomerPhone        string     `json:"customer_phone"`
	CustomerOrganization *string    `json:"customer_organization"`
	CustomerType         string     `json:"customer_type,omitempty"`
	Comment              string     `json:"comment,omitempty"`
	Items                []LineItem `json:"items"`

	// IdempotencyKey is sent as a header, not in the body.
	IdempotencyKey string `json:"-"`
}

// Validate checks the payload shape before it leaves the process.
func (r Request) Validate() error {
	if len(r.Items) == 0 {
		return ErrEmptyOrder
	}
	for _, item := range r.Items {
		if item.QuantityPacks < 1 {
			return fmt.Errorf("%w: product %d has %d packs", ErrEmptyOrder, item.ProductID, item.QuantityPacks)
		}
	}
	return nil
}

type Item struct {
	ID             int64           `json:"id,omitempty"`
	ProductID      int64           `json:"product_id"`
	ProductName    string          `json:"product_name"`
	QuantityPacks  int             `json:"quantity_packs"`
	QuantityPieces int             `json:"quantity_pieces"`
	PricePerUnit   decimal.Decimal `json:"price_per_unit"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// Order is the confirmation returned by the shop API.
type Order struct {
	ID                   int64           `json:"id"`
	TelegramUserID       int64           `json:"telegram_user_id"`
	CustomerName         string          `json:"customer_name"`
	CustomerOrganization *string         `json:"customer_organization"`
	CustomerPhone        string          `json:"customer_phone"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	Status               Status          `json:"status"`
	CreatedAt            time.Time       `json:"created_at"`
	Items                []Item          `json:"items"`
}

// Organization returns the organization name, empty when none was given.
func (o Order) Organization() string {
	if o.CustomerOrganization == nil {
		return ""
	}
	return *o.CustomerOrganization
}

// PiecesTotal sums quantity_pieces over all items.
func (o Order) PiecesTotal() int {
	total := 0
	for _, item := range o.Items {
		total += item.QuantityPieces
	}
	return total
}

// ListResponse is the body of GET /api/orders/me.
type ListResponse struct {
	Orders []Order `json:"orders"`
}

// ValidationProblem is one rejected line of POST /api/cart/validate.
type ValidationProblem struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Error       string `json:"error"`
}

// CartValidation is the server-side verdict on a cart.
type CartValidation struct {
	Valid       bool                `json:"valid"`
	Errors      []ValidationProblem `json:"errors"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
}
