package payment

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shop-backend/internal/postgres"
	"shop-backend/internal/shop"
)

type stubTx struct {
	committed  bool
	rolledBack bool
}

func (t *stubTx) Commit(context.Context) error   { t.committed = true; return nil }
func (t *stubTx) Rollback(context.Context) error { t.rolledBack = true; return nil }

type mockStore struct{ mock.Mock }

func (m *mockStore) BeginTx(ctx context.Context) (postgres.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(postgres.Tx)
	return tx, args.Error(1)
}

func (m *mockStore) OrderForUpdate(ctx context.Context, tx postgres.Tx, userID, orderID int64) (*shop.Order, error) {
	args := m.Called(ctx, tx, userID, orderID)
	o, _ := args.Get(0).(*shop.Order)
	return o, args.Error(1)
}

func (m *mockStore) PaymentByOrder(ctx context.Context, tx postgres.Tx, orderID int64) (*shop.Payment, error) {
	args := m.Called(ctx, tx, orderID)
	p, _ := args.Get(0).(*shop.Payment)
	return p, args.Error(1)
}

func (m *mockStore) CreatePayment(ctx context.Context, tx postgres.Tx, p *shop.Payment) error {
	return m.Called(ctx, tx, p).Error(0)
}

func (m *mockStore) MarkPaymentPaid(ctx context.Context, tx postgres.Tx, paymentID int64, transactionID string, paidAt time.Time) error {
	return m.Called(ctx, tx, paymentID, transactionID, paidAt).Error(0)
}

func (m *mockStore) SetOrderStatus(ctx context.Context, tx postgres.Tx, orderID int64, status shop.OrderStatus) error {
	return m.Called(ctx, tx, orderID, status).Error(0)
}

func countCalls(m *mockStore, method string) int {
	n := 0
	for _, c := range m.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func newFixture() (*mockStore, *stubTx, *Service) {
	store := &mockStore{}
	tx := &stubTx{}
	store.On("BeginTx", mock.Anything).Return(tx, nil)
	return store, tx, NewService(store)
}

func pendingOrder() *shop.Order {
	return &shop.Order{ID: 501, UserID: 7, Status: shop.OrderPending, Total: decimal.RequireFromString("25.00")}
}

func TestSimulatePaymentFailsForUnknownOrder(t *testing.T) {
	store, tx, svc := newFixture()
	store.On("OrderForUpdate", mock.Anything, tx, int64(7), int64(999)).Return(nil, nil)

	_, _, err := svc.SimulatePayment(context.Background(), 7, 999, shop.MethodPix)

	assert.ErrorIs(t, err, shop.ErrNotFound)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestSimulatePaymentSettlesPendingOrder(t *testing.T) {
	store, tx, svc := newFixture()
	store.On("OrderForUpdate", mock.Anything, tx, int64(7), int64(501)).Return(pendingOrder(), nil)
	store.On("PaymentByOrder", mock.Anything, tx, int64(501)).Return(nil, nil)
	store.On("CreatePayment", mock.Anything, tx, mock.AnythingOfType("*shop.Payment")).
		Run(func(args mock.Arguments) {
			args.Get(2).(*shop.Payment).ID = 9001
		}).
		Return(nil)
	store.On("SetOrderStatus", mock.Anything, tx, int64(501), shop.OrderPaid).Return(nil)

	pay, settled, err := svc.SimulatePayment(context.Background(), 7, 501, shop.MethodPix)

	require.NoError(t, err)
	assert.True(t, settled)
	require.NotNil(t, pay)
	assert.Equal(t, int64(9001), pay.ID)
	assert.Equal(t, int64(501), pay.OrderID)
	assert.Equal(t, shop.MethodPix, pay.Method)
	assert.Equal(t, shop.PaymentPaid, pay.Status)
	assert.True(t, strings.HasPrefix(pay.TransactionID, "MOCK-"))
	require.NotNil(t, pay.PaidAt)
	assert.WithinDuration(t, time.Now().UTC(), *pay.PaidAt, 5*time.Second)
	assert.True(t, tx.committed)
	store.AssertExpectations(t)
}

func TestSimulatePaymentReplayReturnsExistingPayment(t *testing.T) {
	store, tx, svc := newFixture()
	paidAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	existing := &shop.Payment{
		ID:            9001,
		OrderID:       501,
		Method:        shop.MethodPix,
		Status:        shop.PaymentPaid,
		TransactionID: "MOCK-20250301120000",
		PaidAt:        &paidAt,
	}
	order := pendingOrder()
	order.Status = shop.OrderPaid
	store.On("OrderForUpdate", mock.Anything, tx, int64(7), int64(501)).Return(order, nil)
	store.On("PaymentByOrder", mock.Anything, tx, int64(501)).Return(existing, nil)

	// replay with a different method: the stored payment wins
	pay, settled, err := svc.SimulatePayment(context.Background(), 7, 501, shop.MethodBoleto)

	require.NoError(t, err)
	assert.False(t, settled)
	assert.Same(t, existing, pay)
	assert.Equal(t, "MOCK-20250301120000", pay.TransactionID)
	assert.Equal(t, shop.MethodPix, pay.Method)
	assert.True(t, tx.committed)
	assert.Zero(t, countCalls(store, "CreatePayment"))
	assert.Zero(t, countCalls(store, "MarkPaymentPaid"))
	assert.Zero(t, countCalls(store, "SetOrderStatus"))
}

func TestSimulatePaymentRejectsFailedPayment(t *testing.T) {
	store, tx, svc := newFixture()
	store.On("OrderForUpdate", mock.Anything, tx, int64(7), int64(501)).Return(pendingOrder(), nil)
	store.On("PaymentByOrder", mock.Anything, tx, int64(501)).
		Return(&shop.Payment{ID: 9001, OrderID: 501, Status: shop.PaymentFailed}, nil)

	_, _, err := svc.SimulatePayment(context.Background(), 7, 501, shop.MethodPix)

	assert.ErrorIs(t, err, shop.ErrInvalidState)
	assert.False(t, tx.committed)
}

func TestSimulatePaymentRejectsOrderThatCannotBecomePaid(t *testing.T) {
	for _, status := range []shop.OrderStatus{shop.OrderShipped, shop.OrderDelivered, shop.OrderCanceled} {
		t.Run(string(status), func(t *testing.T) {
			store, tx, svc := newFixture()
			order := pendingOrder()
			order.Status = status
			store.On("OrderForUpdate", mock.Anything, tx, int64(7), int64(501)).Return(order, nil)
			store.On("PaymentByOrder", mock.Anything, tx, int64(501)).Return(nil, nil)

			_, _, err := svc.SimulatePayment(context.Background(), 7, 501, shop.MethodPix)

			assert.ErrorIs(t, err, shop.ErrInvalidState)
			assert.False(t, tx.committed)
			assert.Zero(t, countCalls(store, "CreatePayment"))
		})
	}
}

func TestSimulatePaymentResumesPendingPayment(t *testing.T) {
	store, tx, svc := newFixture()
	existing := &shop.Payment{ID: 9001, OrderID: 501, Method: shop.MethodCard, Status: shop.PaymentPending}
	store.On("OrderForUpdate", mock.Anything, tx, int64(7), int64(501)).Return(pendingOrder(), nil)
	store.On("PaymentByOrder", mock.Anything, tx, int64(501)).Return(existing, nil)
	store.On("MarkPaymentPaid", mock.Anything, tx, int64(9001), mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(nil)
	store.On("SetOrderStatus", mock.Anything, tx, int64(501), shop.OrderPaid).Return(nil)

	pay, settled, err := svc.SimulatePayment(context.Background(), 7, 501, shop.MethodPix)

	require.NoError(t, err)
	assert.True(t, settled)
	assert.Same(t, existing, pay)
	assert.Equal(t, shop.PaymentPaid, pay.Status)
	assert.True(t, strings.HasPrefix(pay.TransactionID, "MOCK-"))
	require.NotNil(t, pay.PaidAt)
	// resumed in place, never duplicated
	assert.Zero(t, countCalls(store, "CreatePayment"))
	assert.True(t, tx.committed)
	store.AssertExpectations(t)
}

func TestSimulatePaymentDoesNotCommitWhenSettlementWriteFails(t *testing.T) {
	store, tx, svc := newFixture()
	boom := assert.AnError
	store.On("OrderForUpdate", mock.Anything, tx, int64(7), int64(501)).Return(pendingOrder(), nil)
	store.On("PaymentByOrder", mock.Anything, tx, int64(501)).Return(nil, nil)
	store.On("CreatePayment", mock.Anything, tx, mock.AnythingOfType("*shop.Payment")).Return(nil)
	store.On("SetOrderStatus", mock.Anything, tx, int64(501), shop.OrderPaid).Return(boom)

	_, settled, err := svc.SimulatePayment(context.Background(), 7, 501, shop.MethodPix)

	assert.ErrorIs(t, err, boom)
	assert.False(t, settled)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}
