package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/shop"
)

type ListParams struct {
	Query  string // case-insensitive name filter
	Limit  int
	Offset int
}

type Repo struct{ DB *pgxpool.Pool }

const productColumns = `id, category_id, name, slug, description, price, stock, is_active, COALESCE(sku, ''), image_url, created_at`

// List returns active products ordered by name.
func (r *Repo) List(ctx context.Context, p ListParams) ([]shop.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE is_active`
	args := make([]any, 0, 3)
	if p.Query != "" {
		args = append(args, "%"+p.Query+"%")
		q += ` AND name ILIKE $1`
	}
	args = append(args, p.Limit, p.Offset)
	q += fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []shop.Product{}
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

// BySlug returns the active product with that slug, or nil when there is none.
func (r *Repo) BySlug(ctx context.Context, slug string) (*shop.Product, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE slug = $1 AND is_active`, slug)
	var p shop.Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Description,
		&p.Price, &p.Stock, &p.IsActive, &p.SKU, &p.ImageURL, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
