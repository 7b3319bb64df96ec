package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/shop"
)

// ListParams bounds the history listing. Zero values fall back to defaults.
type ListParams struct {
	Limit  int
	Offset int
}

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Repo is the read side of orders: history and single-order lookups, always
// scoped to the owning user. Writes happen in the checkout and payment
// engines only.
type Repo struct{ DB *pgxpool.Pool }

const orderColumns = `id, user_id, status, total, cart_id,
       shipping_cep, shipping_street, shipping_number, COALESCE(shipping_complement, ''),
       shipping_district, shipping_city, shipping_state,
       created_at, updated_at`

func (r *Repo) ListByUser(ctx context.Context, userID int64, p ListParams) ([]shop.Order, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	rows, err := r.DB.Query(ctx, `
		SELECT `+orderColumns+`
		  FROM orders
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []shop.Order{}
	for rows.Next() {
		var o shop.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ByIDForUser returns the order with its items and payment, or nil when it
// does not exist or belongs to someone else.
func (r *Repo) ByIDForUser(ctx context.Context, userID, orderID int64) (*shop.Order, error) {
	var o shop.Order
	err := scanOrder(r.DB.QueryRow(ctx, `
		SELECT `+orderColumns+`
		  FROM orders
		 WHERE id = $1 AND user_id = $2`, orderID, userID), &o)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if o.Items, err = r.itemsFor(ctx, o.ID); err != nil {
		return nil, err
	}
	if o.Payment, err = r.paymentFor(ctx, o.ID); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) StatusByIDForUser(ctx context.Context, userID, orderID int64) (shop.OrderStatus, bool, error) {
	var st shop.OrderStatus
	err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 AND user_id = $2`,
		orderID, userID).Scan(&st)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return st, true, nil
}

func (r *Repo) itemsFor(ctx context.Context, orderID int64) ([]shop.OrderItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price
		  FROM order_items
		 WHERE order_id = $1
		 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []shop.OrderItem
	for rows.Next() {
		var it shop.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) paymentFor(ctx context.Context, orderID int64) (*shop.Payment, error) {
	var p shop.Payment
	err := r.DB.QueryRow(ctx, `
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

func scanOrder(row pgx.Row, o *shop.Order) error {
	return row.Scan(&o.ID, &o.UserID, &o.Status, &o.Total, &o.CartID,
		&o.ShippingCEP, &o.ShippingStreet, &o.ShippingNumber, &o.ShippingComplement,
		&o.ShippingDistrict, &o.ShippingCity, &o.ShippingState,
		&o.CreatedAt, &o.UpdatedAt)
}
