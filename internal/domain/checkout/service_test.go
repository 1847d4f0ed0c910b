package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/example/tg-storefront/internal/domain/cart"
	"github.com/example/tg-storefront/internal/domain/order"
	"github.com/example/tg-storefront/internal/domain/product"
	"github.com/example/tg-storefront/internal/infrastructure/store/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(opts ...Option) (*Service, *cart.Store, *mockOrderAPI) {
	api := &mockOrderAPI{}
	c := cart.NewStore(mocks.NewMockBlobStore())
	return NewService(api, c, opts...), c, api
}

func addProduct(t *testing.T, c *cart.Store, id int64, packs int) {
	t.Helper()
	p := product.Product{ID: id, Name: "p", PricePerUnit: decimal.NewFromInt(15), PiecesPerPack: 6}
	require.NoError(t, c.AddProduct(context.Background(), p, packs))
}

// ============================================
// Submit Tests
// ============================================

func TestService_Submit_Success(t *testing.T) {
	svc, c, api := newTestService(WithTelegramUser(42))
	ctx := context.Background()
	addProduct(t, c, 1, 2)
	addProduct(t, c, 3, 1)

	created, err := svc.Submit(ctx, validDraft())

	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.True(t, c.IsEmpty())

	require.Len(t, api.CreateCalls, 1)
	req := api.CreateCalls[0]
	assert.Equal(t, int64(42), req.TelegramUserID)
	assert.Equal(t, []order.LineItem{{ProductID: 1, QuantityPacks: 2}, {ProductID: 3, QuantityPacks: 1}}, req.Items)
	assert.NotEmpty(t, req.IdempotencyKey)
}

func TestService_Submit_UsesCartAtSubmitTime(t *testing.T) {
	svc, c, api := newTestService()
	ctx := context.Background()
	addProduct(t, c, 1, 2)

	draft := validDraft()
	addProduct(t, c, 1, 3)
	addProduct(t, c, 2, 1)

	_, err := svc.Submit(ctx, draft)

	require.NoError(t, err)
	assert.Equal(t, []order.LineItem{{ProductID: 1, QuantityPacks: 5}, {ProductID: 2, QuantityPacks: 1}}, api.CreateCalls[0].Items)
}

func TestService_Submit_KeepsLinesAddedInFlight(t *testing.T) {
	svc, c, api := newTestService()
	ctx := context.Background()
	addProduct(t, c, 1, 2)
	addProduct(t, c, 3, 1)

	api.OnCreate = func() {
		addProduct(t, c, 2, 1)
		addProduct(t, c, 3, 2)
	}

	_, err := svc.Submit(ctx, validDraft())

	require.NoError(t, err)
	assert.Equal(t, []order.LineItem{{ProductID: 1, QuantityPacks: 2}, {ProductID: 3, QuantityPacks: 1}}, api.CreateCalls[0].Items)
	assert.Equal(t, []order.LineItem{{ProductID: 3, QuantityPacks: 2}, {ProductID: 2, QuantityPacks: 1}}, c.APIItems())
}

func TestService_Submit_AnonymousSendsZero(t *testing.T) {
	svc, c, api := newTestService()
	addProduct(t, c, 1, 1)

	_, err := svc.Submit(context.Background(), validDraft())

	require.NoError(t, err)
	assert.Equal(t, int64(0), api.CreateCalls[0].TelegramUserID)
}

func TestService_Submit_ValidationBeforeNetwork(t *testing.T) {
	svc, c, api := newTestService()
	addProduct(t, c, 1, 1)

	_, err := svc.Submit(context.Background(), Draft{Phone: "1", CustomerType: CustomerIndividual})

	assert.ErrorIs(t, err, ErrMissingName)
	assert.Empty(t, api.CreateCalls)
	assert.False(t, c.IsEmpty())
}

func TestService_Submit_EmptyCart(t *testing.T) {
	svc, _, api := newTestService()

	_, err := svc.Submit(context.Background(), validDraft())

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, api.CreateCalls)
}

func TestService_Submit_FailureLeavesCartUnchanged(t *testing.T) {
	svc, c, api := newTestService()
	ctx := context.Background()
	addProduct(t, c, 1, 2)
	addProduct(t, c, 2, 5)
	before := c.Lines()

	api.CreateErr = errors.New("connection reset")
	_, err := svc.Submit(ctx, validDraft())

	require.Error(t, err)
	assert.ErrorIs(t, err, api.CreateErr)
	assert.Equal(t, before, c.Lines())
	assert.Equal(t, 7, c.ItemsCount())
}

func TestService_Submit_PublishesEvent(t *testing.T) {
	pub := &mockPublisher{}
	svc, c, _ := newTestService(WithPublisher(pub), WithTelegramUser(7))
	addProduct(t, c, 1, 1)

	d := validDraft()
	d.Comment = " после обеда "
	created, err := svc.Submit(context.Background(), d)

	require.NoError(t, err)
	require.Len(t, pub.Calls, 1)
	assert.Equal(t, "order-1", pub.Calls[0].Key)

	event, ok := pub.Calls[0].Event.(order.OrderSubmitted)
	require.True(t, ok)
	assert.Equal(t, created.ID, event.Order.ID)
	assert.Equal(t, "после обеда", event.Comment)
	assert.Equal(t, "individual", event.CustomerType)
	assert.NotEmpty(t, event.EventID)
	assert.NotEmpty(t, event.IdempotencyKey)
}

func TestService_Submit_PublishFailureDoesNotFail(t *testing.T) {
	pub := &mockPublisher{Err: errors.New("broker down")}
	svc, c, _ := newTestService(WithPublisher(pub))
	addProduct(t, c, 1, 1)

	_, err := svc.Submit(context.Background(), validDraft())

	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestService_Submit_NoPublishOnFailure(t *testing.T) {
	pub := &mockPublisher{}
	svc, c, api := newTestService(WithPublisher(pub))
	addProduct(t, c, 1, 1)
	api.CreateErr = errors.New("bad gateway")

	_, err := svc.Submit(context.Background(), validDraft())

	require.Error(t, err)
	assert.Empty(t, pub.Calls)
}

// ============================================
// Preview / Orders Tests
// ============================================

func TestService_Preview(t *testing.T) {
	svc, c, api := newTestService()
	addProduct(t, c, 1, 2)
	api.ValidateResult = &order.CartValidation{Valid: true, TotalAmount: decimal.NewFromInt(180)}

	result, err := svc.Preview(context.Background())

	require.NoError(t, err)
	assert.True(t, result.Valid)
	require.Len(t, api.ValidateCalls, 1)
	assert.Equal(t, []order.LineItem{{ProductID: 1, QuantityPacks: 2}}, api.ValidateCalls[0])
}

func TestService_Preview_EmptyCart(t *testing.T) {
	svc, _, api := newTestService()

	_, err := svc.Preview(context.Background())

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, api.ValidateCalls)
}

func TestService_Preview_TransportError(t *testing.T) {
	svc, c, api := newTestService()
	addProduct(t, c, 1, 1)
	api.ValidateErr = errors.New("timeout")

	_, err := svc.Preview(context.Background())

	assert.ErrorIs(t, err, api.ValidateErr)
}

func TestService_Orders(t *testing.T) {
	svc, _, api := newTestService(WithTelegramUser(42))
	api.ListResult = []order.Order{{ID: 1}, {ID: 2}}

	orders, err := svc.Orders(context.Background())

	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, []int64{42}, api.ListCalls)
}

func TestService_Orders_Anonymous(t *testing.T) {
	svc, _, api := newTestService()

	orders, err := svc.Orders(context.Background())

	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, api.ListCalls)
}

func TestService_SetTelegramUser(t *testing.T) {
	svc, c, api := newTestService()
	addProduct(t, c, 1, 1)

	svc.SetTelegramUser(99)
	_, err := svc.Submit(context.Background(), validDraft())

	require.NoError(t, err)
	assert.Equal(t, int64(99), api.CreateCalls[0].TelegramUserID)
}
