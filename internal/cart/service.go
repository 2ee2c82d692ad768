// Package cart is the per-user ledger of lines waiting for checkout.
package cart

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MikeMC777/littlelemon-api/internal/apperr"
	"github.com/MikeMC777/littlelemon-api/internal/menu"
)

// MenuLookup is the slice of the catalog the cart prices lines from.
type MenuLookup interface {
	GetByID(ctx context.Context, id string) (*menu.MenuItem, error)
}

type Service struct {
	lines Repository
	menu  MenuLookup
	log   *slog.Logger
}

func NewService(lines Repository, menu MenuLookup, log *slog.Logger) *Service {
	return &Service{lines: lines, menu: menu, log: log}
}

// AddOrUpdateLine prices the item at its current menu price and stores it
// as the user's only line for that item.
func (s *Service) AddOrUpdateLine(ctx context.Context, userID, menuItemID string, quantity int) (*Line, error) {
	if quantity < 1 {
		return nil, apperr.Validationf("quantity must be at least 1")
	}
	if quantity > MaxQuantity {
		return nil, apperr.Validationf("quantity must be at most %d", MaxQuantity)
	}
	if _, err := uuid.Parse(menuItemID); err != nil {
		return nil, apperr.Validationf("menu item %q does not exist", menuItemID)
	}
	item, err := s.menu.GetByID(ctx, menuItemID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Validationf("menu item %q does not exist", menuItemID)
	}
	if err != nil {
		return nil, err
	}

	price := LinePrice(item.Price, quantity)
	if price.GreaterThan(MaxLinePrice) {
		return nil, apperr.Validationf("line price must be at most %s", MaxLinePrice.StringFixed(2))
	}

	l := &Line{
		ID:         uuid.NewString(),
		UserID:     userID,
		MenuItemID: item.ID,
		Quantity:   quantity,
		UnitPrice:  item.Price,
		Price:      price,
	}
	if err := s.lines.Upsert(ctx, l); err != nil {
		return nil, err
	}
	s.log.Debug("cart line stored", "user_id", userID, "menuitem", item.ID, "quantity", quantity)
	return l, nil
}

func (s *Service) ListLines(ctx context.Context, userID string) ([]Line, error) {
	return s.lines.ListByUser(ctx, userID)
}

// ClearAll empties the cart. Clearing an empty cart succeeds.
func (s *Service) ClearAll(ctx context.Context, userID string) error {
	n, err := s.lines.ClearByUser(ctx, userID)
	if err != nil {
		return err
	}
	s.log.Debug("cart cleared", "user_id", userID, "lines", n)
	return nil
}
