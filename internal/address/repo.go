package address

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/shop"
)

// Repo is read-only: addresses are managed elsewhere, this service only
// lists them and snapshots them onto orders.
type Repo struct{ DB *pgxpool.Pool }

const addressColumns = `id, user_id, cep, street, number, complement, district, city, state, is_default, created_at`

func (r *Repo) ListByUser(ctx context.Context, userID int64) ([]shop.Address, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+addressColumns+`
	                                FROM addresses WHERE user_id = $1
	                               ORDER BY is_default DESC, created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []shop.Address{}
	for rows.Next() {
		var a shop.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.CEP, &a.Street, &a.Number, &a.Complement,
			&a.District, &a.City, &a.State, &a.IsDefault, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ByIDForUser returns the address only when it belongs to the user; nil otherwise.
func (r *Repo) ByIDForUser(ctx context.Context, userID, addressID int64) (*shop.Address, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+addressColumns+` FROM addresses WHERE id = $1 AND user_id = $2`, addressID, userID)
	var a shop.Address
	err := row.Scan(&a.ID, &a.UserID, &a.CEP, &a.Street, &a.Number, &a.Complement,
		&a.District, &a.City, &a.State, &a.IsDefault, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
