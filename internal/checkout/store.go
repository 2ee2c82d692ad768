package checkout

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/MikeMC777/littlelemon-api/internal/apperr"
	"github.com/MikeMC777/littlelemon-api/internal/cart"
	"github.com/MikeMC777/littlelemon-api/internal/db"
	"github.com/MikeMC777/littlelemon-api/internal/order"
)

// PGStore runs checkouts in Postgres transactions.
type PGStore struct{ pool db.Pool }

func NewPGStore(pool db.Pool) *PGStore { return &PGStore{pool: pool} }

func (s *PGStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return db.InTx(ctx, s.pool, func(q db.DBTX) error {
		return fn(&pgTx{q: q, cart: cart.NewPGRepo(q), orders: order.NewPGRepo(q)})
	})
}

type pgTx struct {
	q      db.DBTX
	cart   *cart.PGRepo
	orders *order.PGRepo
}

func (t *pgTx) Cart() cart.Repository { return t.cart }

func (t *pgTx) Orders() order.Repository { return t.orders }

func (t *pgTx) LockUser(ctx context.Context, userID string) error {
	var id string
	err := t.q.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.ErrNotAuthenticated
	}
	return err
}
