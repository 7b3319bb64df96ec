package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Tx is the transaction handle the engine stores hand out. It hides pgx from
// the engines so their orchestration can be tested against mocks.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

func Begin(ctx context.Context, pool *pgxpool.Pool) (Tx, error) {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx}, nil
}

type pgTx struct{ tx pgx.Tx }

func (t *pgTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *pgTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// Unwrap recovers the pgx transaction for store SQL.
func Unwrap(tx Tx) (pgx.Tx, error) {
	t, ok := tx.(*pgTx)
	if !ok {
		return nil, errors.New("invalid transaction type")
	}
	return t.tx, nil
}
