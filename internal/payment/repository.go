package payment

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/postgres"
	"shop-backend/internal/shop"
)

// Store is the payment engine's persistence boundary.
type Store interface {
	BeginTx(ctx context.Context) (postgres.Tx, error)
	OrderForUpdate(ctx context.Context, tx postgres.Tx, userID, orderID int64) (*shop.Order, error)
	PaymentByOrder(ctx context.Context, tx postgres.Tx, orderID int64) (*shop.Payment, error)
	CreatePayment(ctx context.Context, tx postgres.Tx, p *shop.Payment) error
	MarkPaymentPaid(ctx context.Context, tx postgres.Tx, paymentID int64, transactionID string, paidAt time.Time) error
	SetOrderStatus(ctx context.Context, tx postgres.Tx, orderID int64, status shop.OrderStatus) error
}

func NewStore(db *pgxpool.Pool) Store { return &pgStore{db: db} }

type pgStore struct{ db *pgxpool.Pool }

func (s *pgStore) BeginTx(ctx context.Context) (postgres.Tx, error) {
	return postgres.Begin(ctx, s.db)
}

func (s *pgStore) OrderForUpdate(ctx context.Context, tx postgres.Tx, userID, orderID int64) (*shop.Order, error) {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return nil, err
	}
	var o shop.Order
	err = t.QueryRow(ctx, `
		SELECT id, user_id, status, total, cart_id,
		       shipping_cep, shipping_street, shipping_number, COALESCE(shipping_complement, ''),
		       shipping_district, shipping_city, shipping_state,
		       created_at, updated_at
		  FROM orders
		 WHERE id = $1 AND user_id = $2
		 FOR UPDATE`, orderID, userID).
		Scan(&o.ID, &o.UserID, &o.Status, &o.Total, &o.CartID,
			&o.ShippingCEP, &o.ShippingStreet, &o.ShippingNumber, &o.ShippingComplement,
			&o.ShippingDistrict, &o.ShippingCity, &o.ShippingState,
			&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *pgStore) PaymentByOrder(ctx context.Context, tx postgres.Tx, orderID int64) (*shop.Payment, error) {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return nil, err
	}
	var p shop.Payment
	err = t.QueryRow(ctx, `
		SELECT id, order_id, method, status, COALESCE(transaction_id, ''), paid_at, created_at
		  FROM payments
		 WHERE order_id = $1`, orderID).
		Scan(&p.ID, &p.OrderID, &p.Method, &p.Status, &p.TransactionID, &p.PaidAt, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *pgStore) CreatePayment(ctx context.Context, tx postgres.Tx, p *shop.Payment) error {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return err
	}
	return t.QueryRow(ctx, `
		INSERT INTO payments (order_id, method, status, transaction_id, paid_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		p.OrderID, p.Method, p.Status, p.TransactionID, p.PaidAt).
		Scan(&p.ID, &p.CreatedAt)
}

func (s *pgStore) MarkPaymentPaid(ctx context.Context, tx postgres.Tx, paymentID int64, transactionID string, paidAt time.Time) error {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return err
	}
	_, err = t.Exec(ctx, `
		UPDATE payments SET status = 'paid', transaction_id = $2, paid_at = $3 WHERE id = $1`,
		paymentID, transactionID, paidAt)
	return err
}

func (s *pgStore) SetOrderStatus(ctx context.Context, tx postgres.Tx, orderID int64, status shop.OrderStatus) error {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return err
	}
	_, err = t.Exec(ctx, `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, orderID, status)
	return err
}
