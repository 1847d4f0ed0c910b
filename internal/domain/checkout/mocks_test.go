package checkout

import (
	"context"
	"sync"

	"github.com/example/tg-storefront/internal/domain/order"
)

type mockOrderAPI struct {
	mu sync.Mutex

	CreateCalls    []order.Request
	CreateErr      error
	CreateResult   *order.Order
	OnCreate       func()
	ListCalls      []int64
	ListErr        error
	ListResult     []order.Order
	ValidateCalls  [][]order.LineItem
	ValidateErr    error
	ValidateResult *order.CartValidation
}

func (m *mockOrderAPI) CreateOrder(ctx context.Context, req order.Request) (*order.Order, error) {
	if m.OnCreate != nil {
		m.OnCreate()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls = append(m.CreateCalls, req)
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.CreateResult != nil {
		return m.CreateResult, nil
	}
	return &order.Order{ID: int64(len(m.CreateCalls)), Status: order.StatusNew, TelegramUserID: req.TelegramUserID}, nil
}

func (m *mockOrderAPI) ListOrders(ctx context.Context, telegramUserID int64) ([]order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListCalls = append(m.ListCalls, telegramUserID)
	return m.ListResult, m.ListErr
}

func (m *mockOrderAPI) ValidateCart(ctx context.Context, items []order.LineItem) (*order.CartValidation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ValidateCalls = append(m.ValidateCalls, items)
	if m.ValidateErr != nil {
		return nil, m.ValidateErr
	}
	return m.ValidateResult, nil
}

type publishCall struct {
	Key   string
	Event any
}

type mockPublisher struct {
	Calls []publishCall
	Err   error
}

func (m *mockPublisher) Publish(ctx context.Context, key string, event any) error {
	m.Calls = append(m.Calls, publishCall{Key: key, Event: event})
	return m.Err
}
