// Package checkout turns a user's cart into an order in one transaction.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/littlelemon-api/internal/access"
	"github.com/MikeMC777/littlelemon-api/internal/apperr"
	"github.com/MikeMC777/littlelemon-api/internal/cart"
	"github.com/MikeMC777/littlelemon-api/internal/order"
)

// Timeout bounds a whole checkout transaction.
const Timeout = 10 * time.Second

// Tx is the view of the store inside one checkout transaction.
type Tx interface {
	// LockUser serialises checkouts of the same user. A missing user is
	// ErrNotAuthenticated.
	LockUser(ctx context.Context, userID string) error
	Cart() cart.Repository
	Orders() order.Repository
}

// Store runs fn in a transaction, committing when fn returns nil and
// rolling everything back otherwise.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

type Result struct {
	Order *order.Order
	// Empty reports that the cart had no lines; Order is then a zero order.
	Empty bool
}

type Engine struct {
	store Store
	log   *slog.Logger
}

func NewEngine(store Store, log *slog.Logger) *Engine {
	return &Engine{store: store, log: log}
}

// Total is the exact sum of the line prices.
func Total(lines []cart.Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Price)
	}
	return sum
}

// Checkout moves every line of p's cart into a new order. Either the
// order, all its items and the emptied cart are committed together, or
// nothing changes.
func (e *Engine) Checkout(ctx context.Context, p access.Principal) (*Result, error) {
	if !p.Authenticated() {
		return nil, apperr.ErrNotAuthenticated
	}

	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	var res *Result
	err := e.store.InTx(ctx, func(tx Tx) error {
		if err := tx.LockUser(ctx, p.UserID); err != nil {
			return err
		}
		lines, err := tx.Cart().LockByUser(ctx, p.UserID)
		if err != nil {
			return fmt.Errorf("lock cart: %w", err)
		}

		total := Total(lines)
		if total.GreaterThan(order.MaxTotal) {
			return apperr.Validationf("order total must be at most %s", order.MaxTotal.StringFixed(2))
		}

		o := &order.Order{
			ID:     uuid.NewString(),
			UserID: p.UserID,
			Status: order.StatusOpen,
			Total:  total,
		}
		if err := tx.Orders().Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		items := make([]order.Item, 0, len(lines))
		ids := make([]string, 0, len(lines))
		for _, l := range lines {
			it := order.Freeze(l)
			it.ID = uuid.NewString()
			it.OrderID = o.ID
			items = append(items, it)
			ids = append(ids, l.ID)
		}
		if err := tx.Orders().CreateItems(ctx, items); err != nil {
			return fmt.Errorf("create items: %w", err)
		}

		n, err := tx.Cart().DeleteLines(ctx, p.UserID, ids)
		if err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		if n != int64(len(ids)) {
			return fmt.Errorf("clear cart: removed %d of %d lines", n, len(ids))
		}

		o.Items = items
		res = &Result{Order: o, Empty: len(lines) == 0}
		return nil
	})
	if errors.Is(err, apperr.ErrNotAuthenticated) || errors.Is(err, apperr.ErrValidation) {
		return nil, err
	}
	if err != nil {
		e.log.Error("checkout rolled back", "user_id", p.UserID, "err", err)
		return nil, apperr.Transaction("checkout", err)
	}

	if res.Empty {
		e.log.Info("checkout of empty cart", "user_id", p.UserID, "order_id", res.Order.ID)
	} else {
		e.log.Info("checkout",
			"user_id", p.UserID,
			"order_id", res.Order.ID,
			"items", len(res.Order.Items),
			"total", res.Order.Total.StringFixed(2),
		)
	}
	return res, nil
}
