package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/littlelemon-api/internal/apperr"
	"github.com/MikeMC777/littlelemon-api/internal/db"
)

type Repository interface {
	// Upsert stores l, replacing quantity and prices of an existing line
	// for the same (user, menu item). l.ID ends up as the stored line's id.
	Upsert(ctx context.Context, l *Line) error
	ListByUser(ctx context.Context, userID string) ([]Line, error)
	ClearByUser(ctx context.Context, userID string) (int64, error)
	// LockByUser reads the user's lines with FOR UPDATE; only meaningful
	// inside a transaction.
	LockByUser(ctx context.Context, userID string) ([]Line, error)
	DeleteLines(ctx context.Context, userID string, ids []string) (int64, error)
}

type PGRepo struct{ db db.DBTX }

func NewPGRepo(q db.DBTX) *PGRepo { return &PGRepo{db: q} }

const selectLines = `
	SELECT id, user_id, menuitem_id, quantity, unit_price::text, price::text, created_at
	FROM cart_lines
	WHERE user_id = $1
	ORDER BY created_at, id
`

func (r *PGRepo) Upsert(ctx context.Context, l *Line) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO cart_lines (id, user_id, menuitem_id, quantity, unit_price, price, created_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, NOW())
		ON CONFLICT (user_id, menuitem_id) DO UPDATE
		SET quantity = EXCLUDED.quantity,
		    unit_price = EXCLUDED.unit_price,
		    price = EXCLUDED.price
		RETURNING id, created_at
	`, l.ID, l.UserID, l.MenuItemID, l.Quantity, l.UnitPrice.String(), l.Price.String()).Scan(&l.ID, &l.CreatedAt)
	if db.IsForeignKeyViolation(err) {
		return apperr.Validationf("menu item %s does not exist", l.MenuItemID)
	}
	return err
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Line, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()
	return r.query(ctx, selectLines, userID)
}

func (r *PGRepo) LockByUser(ctx context.Context, userID string) ([]Line, error) {
	return r.query(ctx, selectLines+` FOR UPDATE`, userID)
}

func (r *PGRepo) ClearByUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PGRepo) DeleteLines(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1 AND id = ANY($2)`, userID, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PGRepo) query(ctx context.Context, sql, userID string) ([]Line, error) {
	rows, err := r.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Line{}
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func scanLine(row pgx.Row) (*Line, error) {
	var (
		l                Line
		unitStr, priceSt string
		created          time.Time
	)
	if err := row.Scan(&l.ID, &l.UserID, &l.MenuItemID, &l.Quantity, &unitStr, &priceSt, &created); err != nil {
		return nil, err
	}
	var err error
	if l.UnitPrice, err = decimal.NewFromString(unitStr); err != nil {
		return nil, fmt.Errorf("parse unit_price: %w", err)
	}
	if l.Price, err = decimal.NewFromString(priceSt); err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}
	l.CreatedAt = created
	return &l, nil
}
