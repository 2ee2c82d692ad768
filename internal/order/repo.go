package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/littlelemon-api/internal/apperr"
	"github.com/MikeMC777/littlelemon-api/internal/db"
)

// Filter narrows order reads. An empty OwnerID reads every user's orders.
type Filter struct {
	OwnerID string
	Limit   int
	Offset  int
}

type Repository interface {
	Create(ctx context.Context, o *Order) error
	CreateItems(ctx context.Context, items []Item) error
	List(ctx context.Context, f Filter) ([]Order, error)
	// Get returns the order only when it belongs to ownerID (any owner when
	// ownerID is empty).
	Get(ctx context.Context, id, ownerID string) (*Order, error)
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id, ownerID string) error
}

type PGRepo struct{ db db.DBTX }

func NewPGRepo(q db.DBTX) *PGRepo { return &PGRepo{db: q} }

const selectOrder = `
	SELECT id, user_id, COALESCE(delivery_crew_id::text, ''), status, total::text, created_at, updated_at
	FROM orders
`

func (r *PGRepo) Create(ctx context.Context, o *Order) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO orders (id, user_id, delivery_crew_id, status, total, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3::text, '')::uuid, $4, $5::numeric, NOW(), NOW())
		RETURNING created_at, updated_at
	`, o.ID, o.UserID, crewArg(o.DeliveryCrewID), o.Status, o.Total.String()).Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (r *PGRepo) CreateItems(ctx context.Context, items []Item) error {
	for _, it := range items {
		if _, err := r.db.Exec(ctx, `
			INSERT INTO order_items (id, order_id, menuitem_id, quantity, unit_price, price)
			VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric)
		`, it.ID, it.OrderID, it.MenuItemID, it.Quantity, it.UnitPrice.String(), it.Price.String()); err != nil {
			return fmt.Errorf("insert item %s: %w", it.MenuItemID, err)
		}
	}
	return nil
}

func (r *PGRepo) List(ctx context.Context, f Filter) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, selectOrder+`
		WHERE ($1::text = '' OR user_id::text = $1)
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, f.OwnerID, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepo) Get(ctx context.Context, id, ownerID string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, selectOrder+`
		WHERE id = $1 AND ($2::text = '' OR user_id::text = $2)
	`, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("order")
	}
	if err != nil {
		return nil, err
	}
	one := []Order{*o}
	if err := r.loadItems(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (r *PGRepo) Update(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE orders
		SET delivery_crew_id = NULLIF($2::text, '')::uuid, status = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, o.ID, crewArg(o.DeliveryCrewID), o.Status).Scan(&o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("order")
	}
	if db.IsForeignKeyViolation(err) {
		return apperr.Validationf("delivery crew user does not exist")
	}
	return err
}

func (r *PGRepo) Delete(ctx context.Context, id, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, db.QueryTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		DELETE FROM orders WHERE id = $1 AND ($2::text = '' OR user_id::text = $2)
	`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("order")
	}
	return nil
}

// loadItems fills Items of every order with a single query.
func (r *PGRepo) loadItems(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	byID := make(map[string]*Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		orders[i].Items = []Item{}
		byID[orders[i].ID] = &orders[i]
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, menuitem_id, quantity, unit_price::text, price::text
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it          Item
			unit, price string
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Quantity, &unit, &price); err != nil {
			return err
		}
		if it.UnitPrice, err = decimal.NewFromString(unit); err != nil {
			return fmt.Errorf("parse unit_price: %w", err)
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return fmt.Errorf("parse price: %w", err)
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o           Order
		crew, total string
	)
	if err := row.Scan(&o.ID, &o.UserID, &crew, &o.Status, &total, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if crew != "" {
		o.DeliveryCrewID = &crew
	}
	t, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	o.Total = t
	return &o, nil
}

func crewArg(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}
