package checkout

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/tg-storefront/internal/domain/cart"
	"github.com/example/tg-storefront/internal/domain/order"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// OrderAPI is the remote order service.
type OrderAPI interface {
	CreateOrder(ctx context.Context, req order.Request) (*order.Order, error)
	ListOrders(ctx context.Context, telegramUserID int64) ([]order.Order, error)
	ValidateCart(ctx context.Context, items []order.LineItem) (*order.CartValidation, error)
}

// EventPublisher receives successfully submitted orders.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Option func(*Service)

// WithTelegramUser sets the id sent as telegram_user_id. 0 means anonymous.
func WithTelegramUser(id int64) Option {
	return func(s *Service) { s.telegramUserID.Store(id) }
}

func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithLogger(logger *log.Entry) Option {
	return func(s *Service) { s.logger = logger }
}

// Service submits the cart of one customer as an order.
type Service struct {
	orders         OrderAPI
	cart           *cart.Store
	publisher      EventPublisher
	logger         *log.Entry
	telegramUserID atomic.Int64

	// submitting serializes Submit so one cart is never sent twice concurrently
	submitting sync.Mutex
}

func NewService(orders OrderAPI, c *cart.Store, opts ...Option) *Service {
	s := &Service{
		orders: orders,
		cart:   c,
		logger: log.WithField("component", "checkout"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetTelegramUser changes the identity used for later submissions.
func (s *Service) SetTelegramUser(id int64) {
	s.telegramUserID.Store(id)
}

// Validate checks d against the current cart without any network call.
func (s *Service) Validate(d Draft) error {
	return Validate(d, s.cart.APIItems())
}

// Submit validates d, sends the current cart as an order and removes the
// ordered lines once the order was accepted. Lines added while the request
// was in flight stay in the cart. On any failure the cart is left as it was.
func (s *Service) Submit(ctx context.Context, d Draft) (*order.Order, error) {
	s.submitting.Lock()
	defer s.submitting.Unlock()

	items := s.cart.APIItems()
	if err := Validate(d, items); err != nil {
		return nil, err
	}

	req := BuildRequest(d, items, s.telegramUserID.Load())
	req.IdempotencyKey = uuid.New().String()

	logger := s.logger.WithFields(log.Fields{
		"telegram_user_id": req.TelegramUserID,
		"items":            len(req.Items),
		"idempotency_key":  req.IdempotencyKey,
	})

	created, err := s.orders.CreateOrder(ctx, req)
	if err != nil {
		logger.WithError(err).Warn("order submission failed")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.cart.RemoveOrdered(ctx, req.Items); err != nil {
		logger.WithError(err).Error("failed to clear cart after order")
	}
	logger.WithField("order_id", created.ID).Info("order submitted")

	s.publish(ctx, logger, order.OrderSubmitted{
		EventID:        uuid.New().String(),
		IdempotencyKey: req.IdempotencyKey,
		Order:          *created,
		CustomerType:   string(d.Trimmed().CustomerType),
		Comment:        d.Trimmed().Comment,
		SubmittedAt:    time.Now().UTC(),
	})

	return created, nil
}

func (s *Service) publish(ctx context.Context, logger *log.Entry, event order.OrderSubmitted) {
	if s.publisher == nil {
		return
	}
	key := fmt.Sprintf("order-%d", event.Order.ID)
	if err := s.publisher.Publish(ctx, key, event); err != nil {
		logger.WithError(err).Error("failed to publish order event")
	}
}

// Preview asks the shop API whether the current cart can be ordered as is
// (stock, minimum order). An empty cart is a validation error.
func (s *Service) Preview(ctx context.Context) (*order.CartValidation, error) {
	items := s.cart.APIItems()
	if len(items) == 0 {
		return nil, invalid(KindEmptyCart)
	}

	result, err := s.orders.ValidateCart(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("failed to validate cart: %w", err)
	}
	return result, nil
}

// Orders lists the orders of the current customer. Anonymous customers have
// none and no request is made.
func (s *Service) Orders(ctx context.Context) ([]order.Order, error) {
	userID := s.telegramUserID.Load()
	if userID == 0 {
		return []order.Order{}, nil
	}

	orders, err := s.orders.ListOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}
