package checkout

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"shop-backend/internal/postgres"
	"shop-backend/internal/shop"
)

// Store is the checkout engine's persistence boundary. All reads here run
// inside the checkout transaction; lookups that miss return nil.
type Store interface {
	BeginTx(ctx context.Context) (postgres.Tx, error)
	AddressByIDForUser(ctx context.Context, tx postgres.Tx, userID, addressID int64) (*shop.Address, error)
	ActiveCartForUpdate(ctx context.Context, tx postgres.Tx, userID, cartID int64) (*shop.Cart, error)
	CartItems(ctx context.Context, tx postgres.Tx, cartID int64) ([]shop.CartItem, error)
	ActiveProductsForUpdate(ctx context.Context, tx postgres.Tx, productIDs []int64) ([]shop.Product, error)
	CreateOrder(ctx context.Context, tx postgres.Tx, order *shop.Order) error
	CreateOrderItem(ctx context.Context, tx postgres.Tx, item *shop.OrderItem) error
	DecrementStock(ctx context.Context, tx postgres.Tx, productID int64, qty int) error
	SetOrderTotal(ctx context.Context, tx postgres.Tx, orderID int64, total decimal.Decimal) error
	ConvertCart(ctx context.Context, tx postgres.Tx, cartID int64) error
	DeleteCartItems(ctx context.Context, tx postgres.Tx, cartID int64) error
}

func NewStore(db *pgxpool.Pool) Store { return &pgStore{db: db} }

type pgStore struct{ db *pgxpool.Pool }

func (s *pgStore) BeginTx(ctx context.Context) (postgres.Tx, error) {
	return postgres.Begin(ctx, s.db)
}

func (s *pgStore) AddressByIDForUser(ctx context.Context, tx postgres.Tx, userID, addressID int64) (*shop.Address, error) {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return nil, err
	}
	var a shop.Address
	err = t.QueryRow(ctx, `
		SELECT id, user_id, cep, street, number, COALESCE(complement, ''), district, city, state, is_default, created_at
		  FROM addresses
		 WHERE id = $1 AND user_id = $2`, addressID, userID).
		Scan(&a.ID, &a.UserID, &a.CEP, &a.Street, &a.Number, &a.Complement, &a.District,
			&a.City, &a.State, &a.IsDefault, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *pgStore) ActiveCartForUpdate(ctx context.Context, tx postgres.Tx, userID, cartID int64) (*shop.Cart, error) {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return nil, err
	}
	var c shop.Cart
	err = t.QueryRow(ctx, `
		SELECT id, user_id, status, created_at, updated_at
		  FROM carts
		 WHERE id = $1 AND user_id = $2 AND status = 'active'
		 FOR UPDATE`, cartID, userID).
		Scan(&c.ID, &c.UserID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *pgStore) CartItems(ctx context.Context, tx postgres.Tx, cartID int64) ([]shop.CartItem, error) {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return nil, err
	}
	rows, err := t.Query(ctx, `
		SELECT id, cart_id, product_id, quantity
		  FROM cart_items
		 WHERE cart_id = $1
		 ORDER BY id`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []shop.CartItem
	for rows.Next() {
		var it shop.CartItem
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ActiveProductsForUpdate locks every referenced product row in id order so
// concurrent checkouts sharing products always acquire locks in the same
// sequence and cannot deadlock.
func (s *pgStore) ActiveProductsForUpdate(ctx context.Context, tx postgres.Tx, productIDs []int64) ([]shop.Product, error) {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return nil, err
	}
	rows, err := t.Query(ctx, `
		SELECT id, category_id, name, slug, description, price, stock, is_active, COALESCE(sku, ''), image_url, created_at
		  FROM products
		 WHERE id = ANY($1) AND is_active
		 ORDER BY id
		 FOR UPDATE`, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []shop.Product
	for rows.Next() {
		var p shop.Product
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Description,
			&p.Price, &p.Stock, &p.IsActive, &p.SKU, &p.ImageURL, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *pgStore) CreateOrder(ctx context.Context, tx postgres.Tx, order *shop.Order) error {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return err
	}
	return t.QueryRow(ctx, `
		INSERT INTO orders (user_id, status, total, cart_id,
		                    shipping_cep, shipping_street, shipping_number, shipping_complement,
		                    shipping_district, shipping_city, shipping_state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		order.UserID, order.Status, order.Total, order.CartID,
		order.ShippingCEP, order.ShippingStreet, order.ShippingNumber, order.ShippingComplement,
		order.ShippingDistrict, order.ShippingCity, order.ShippingState).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
}

func (s *pgStore) CreateOrderItem(ctx context.Context, tx postgres.Tx, item *shop.OrderItem) error {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return err
	}
	return t.QueryRow(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		item.OrderID, item.ProductID, item.Quantity, item.UnitPrice).
		Scan(&item.ID)
}

func (s *pgStore) DecrementStock(ctx context.Context, tx postgres.Tx, productID int64, qty int) error {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return err
	}
	_, err = t.Exec(ctx, `UPDATE products SET stock = stock - $2 WHERE id = $1`, productID, qty)
	return err
}

func (s *pgStore) SetOrderTotal(ctx context.Context, tx postgres.Tx, orderID int64, total decimal.Decimal) error {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return err
	}
	_, err = t.Exec(ctx, `UPDATE orders SET total = $2, updated_at = now() WHERE id = $1`, orderID, total)
	return err
}

func (s *pgStore) ConvertCart(ctx context.Context, tx postgres.Tx, cartID int64) error {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return err
	}
	_, err = t.Exec(ctx, `UPDATE carts SET status = 'converted', updated_at = now() WHERE id = $1`, cartID)
	return err
}

func (s *pgStore) DeleteCartItems(ctx context.Context, tx postgres.Tx, cartID int64) error {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return err
	}
	_, err = t.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}
