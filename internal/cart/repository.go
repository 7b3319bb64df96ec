package cart

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/postgres"
	"shop-backend/internal/shop"
)

// Store is the cart engine's persistence boundary. Lookups that miss return
// nil rather than an error so the service owns the taxonomy.
type Store interface {
	BeginTx(ctx context.Context) (postgres.Tx, error)
	ActiveCartForUpdate(ctx context.Context, tx postgres.Tx, userID int64) (*shop.Cart, error)
	CreateActiveCart(ctx context.Context, tx postgres.Tx, userID int64) (*shop.Cart, error)
	ActiveProduct(ctx context.Context, tx postgres.Tx, productID int64) (*shop.Product, error)
	ProductByID(ctx context.Context, tx postgres.Tx, productID int64) (*shop.Product, error)
	ItemQuantity(ctx context.Context, tx postgres.Tx, cartID, productID int64) (int, bool, error)
	AddItemQuantity(ctx context.Context, tx postgres.Tx, cartID, productID int64, qty int) error
	SetItemQuantity(ctx context.Context, tx postgres.Tx, cartID, productID int64, qty int) error
	DeleteItemByProduct(ctx context.Context, tx postgres.Tx, cartID, productID int64) error
	ItemForUpdate(ctx context.Context, tx postgres.Tx, userID, itemID int64) (*shop.CartItem, error)
	UpdateItemQuantity(ctx context.Context, tx postgres.Tx, itemID int64, qty int) error
	DeleteItem(ctx context.Context, tx postgres.Tx, itemID int64) error
	TouchCart(ctx context.Context, tx postgres.Tx, cartID int64) (time.Time, error)
	Lines(ctx context.Context, cartID int64) ([]shop.SummaryLine, error)
}

func NewStore(db *pgxpool.Pool) Store { return &pgStore{db: db} }

type pgStore struct{ db *pgxpool.Pool }

func (s *pgStore) BeginTx(ctx context.Context) (postgres.Tx, error) {
	return postgres.Begin(ctx, s.db)
}

const cartColumns = `id, user_id, status, created_at, updated_at`

func (s *pgStore) ActiveCartForUpdate(ctx context.Context, tx postgres.Tx, userID int64) (*shop.Cart, error) {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return nil, err
	}
	return scanCart(t.QueryRow(ctx, `
		SELECT `+cartColumns+` FROM carts
		 WHERE user_id = $1 AND status = 'active'
		 ORDER BY updated_at DESC
		 LIMIT 1
		 FOR UPDATE`, userID))
}

// CreateActiveCart inserts against the partial unique index; losing the race
// falls back to locking the winner's row.
func (s *pgStore) CreateActiveCart(ctx context.Context, tx postgres.Tx, userID int64) (*shop.Cart, error) {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return nil, err
	}
	cart, err := scanCart(t.QueryRow(ctx, `
		INSERT INTO carts (user_id, status) VALUES ($1, 'active')
		ON CONFLICT (user_id) WHERE status = 'active' DO NOTHING
		RETURNING `+cartColumns, userID))
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}
	return s.ActiveCartForUpdate(ctx, tx, userID)
}

func (s *pgStore) ActiveProduct(ctx context.Context, tx postgres.Tx, productID int64) (*shop.Product, error) {
	return s.product(ctx, tx, productID, true)
}

func (s *pgStore) ProductByID(ctx context.Context, tx postgres.Tx, productID int64) (*shop.Product, error) {
	return s.product(ctx, tx, productID, false)
}

func (s *pgStore) product(ctx context.Context, tx postgres.Tx, productID int64, activeOnly bool) (*shop.Product, error) {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return nil, err
	}
	q := `SELECT id, category_id, name, slug, description, price, stock, is_active, COALESCE(sku, ''), image_url, created_at
	        FROM products WHERE id = $1`
	if activeOnly {
		q += ` AND is_active`
	}
	var p shop.Product
	err = t.QueryRow(ctx, q, productID).Scan(&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Description,
		&p.Price, &p.Stock, &p.IsActive, &p.SKU, &p.ImageURL, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *pgStore) ItemQuantity(ctx context.Context, tx postgres.Tx, cartID, productID int64) (int, bool, error) {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return 0, false, err
	}
	var qty int
	err = t.QueryRow(ctx, `SELECT quantity FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return qty, true, nil
}

// AddItemQuantity increments in SQL so concurrent adds never lose updates.
func (s *pgStore) AddItemQuantity(ctx context.Context, tx postgres.Tx, cartID, productID int64, qty int) error {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return err
	}
	_, err = t.Exec(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity) VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		cartID, productID, qty)
	return err
}

func (s *pgStore) SetItemQuantity(ctx context.Context, tx postgres.Tx, cartID, productID int64, qty int) error {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return err
	}
	_, err = t.Exec(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity) VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity`,
		cartID, productID, qty)
	return err
}

func (s *pgStore) DeleteItemByProduct(ctx context.Context, tx postgres.Tx, cartID, productID int64) error {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return err
	}
	_, err = t.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	return err
}

func (s *pgStore) ItemForUpdate(ctx context.Context, tx postgres.Tx, userID, itemID int64) (*shop.CartItem, error) {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return nil, err
	}
	var it shop.CartItem
	err = t.QueryRow(ctx, `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity
		  FROM cart_items ci
		  JOIN carts c ON c.id = ci.cart_id
		 WHERE ci.id = $1 AND c.user_id = $2 AND c.status = 'active'
		 FOR UPDATE OF ci`, itemID, userID).Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *pgStore) UpdateItemQuantity(ctx context.Context, tx postgres.Tx, itemID int64, qty int) error {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return err
	}
	_, err = t.Exec(ctx, `UPDATE cart_items SET quantity = $2 WHERE id = $1`, itemID, qty)
	return err
}

func (s *pgStore) DeleteItem(ctx context.Context, tx postgres.Tx, itemID int64) error {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return err
	}
	_, err = t.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	return err
}

func (s *pgStore) TouchCart(ctx context.Context, tx postgres.Tx, cartID int64) (time.Time, error) {
	t, err := postgres.Unwrap(tx)
	if err != nil {
		return time.Time{}, err
	}
	var ts time.Time
	err = t.QueryRow(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1 RETURNING updated_at`, cartID).Scan(&ts)
	return ts, err
}

// Lines loads the summary rows priced at the current product price.
// Subtotals are computed by the service.
func (s *pgStore) Lines(ctx context.Context, cartID int64) ([]shop.SummaryLine, error) {
	rows, err := s.db.Query(ctx, `
		SELECT ci.id, p.id, p.slug, p.name, COALESCE(cat.name, ''), p.image_url, p.price, ci.quantity
		  FROM cart_items ci
		  JOIN products p ON p.id = ci.product_id
		  LEFT JOIN categories cat ON cat.id = p.category_id
		 WHERE ci.cart_id = $1
		 ORDER BY ci.id`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []shop.SummaryLine{}
	for rows.Next() {
		var l shop.SummaryLine
		if err := rows.Scan(&l.CartItemID, &l.ProductID, &l.Slug, &l.Name, &l.Category,
			&l.ImageURL, &l.UnitPrice, &l.Quantity); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanCart(row pgx.Row) (*shop.Cart, error) {
	var c shop.Cart
	err := row.Scan(&c.ID, &c.UserID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
