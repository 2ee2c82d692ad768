// Package menu is the catalog: menu items with their current price.
package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/littlelemon-api/internal/apperr"
	"github.com/MikeMC777/littlelemon-api/internal/db"
)

type Query struct {
	Search   string
	Category string
	Ordering string
	Limit    int
	Offset   int
}

// orderings whitelists the ordering query parameter.
var orderings = map[string]string{
	"":       "created_at DESC, id",
	"price":  "price ASC, id",
	"-price": "price DESC, id",
	"title":  "title ASC, id",
	"-title": "title DESC, id",
}

func (q Query) Validate() error {
	if _, ok := orderings[q.Ordering]; !ok {
		return apperr.Validationf("unknown ordering %q", q.Ordering)
	}
	return nil
}

type Repository interface {
	Create(ctx context.Context, it *MenuItem) error
	GetByID(ctx context.Context, id string) (*MenuItem, error)
	List(ctx context.Context, q Query) ([]MenuItem, error)
	Update(ctx context.Context, it *MenuItem) error
	Delete(ctx context.Context, id string) error
}

type PGRepo struct{ db db.DBTX }

func NewPGRepo(q db.DBTX) *PGRepo { return &PGRepo{db: q} }

const columns = `id, title, price::text, category, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, it *MenuItem) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO menu_items (id, title, price, category, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`, it.ID, it.Title, it.Price.String(), it.Category).Scan(&it.CreatedAt, &it.UpdatedAt)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*MenuItem, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	it, err := scanItem(r.db.QueryRow(ctx, `SELECT `+columns+` FROM menu_items WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("menu item")
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]MenuItem, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	order, ok := orderings[q.Ordering]
	if !ok {
		return nil, apperr.Validationf("unknown ordering %q", q.Ordering)
	}
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+columns+`
		FROM menu_items
		WHERE ($1 = '' OR title ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR category = $2)
		ORDER BY `+order+`
		LIMIT $3 OFFSET $4
	`, strings.TrimSpace(q.Search), strings.TrimSpace(q.Category), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MenuItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, it *MenuItem) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE menu_items
		SET title = $2, price = $3, category = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, it.ID, it.Title, it.Price.String(), it.Category).Scan(&it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("menu item")
	}
	return err
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if db.IsForeignKeyViolation(err) {
		return apperr.Conflictf("menu item is referenced by existing orders")
	}
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("menu item")
	}
	return nil
}

func scanItem(row pgx.Row) (*MenuItem, error) {
	var (
		it    MenuItem
		price string
	)
	if err := row.Scan(&it.ID, &it.Title, &price, &it.Category, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("menu item %s: price %q: %w", it.ID, price, err)
	}
	it.Price = p
	return &it, nil
}
