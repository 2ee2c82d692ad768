package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/MikeMC777/littlelemon-api/internal/apperr"
	"github.com/MikeMC777/littlelemon-api/internal/cart"
)

// Cart implements cart.Repository.
type Cart struct{ v view }

func (r *Cart) Upsert(_ context.Context, l *cart.Line) error {
	defer r.v.lock()()
	st := r.v.s.st
	if _, ok := st.menu[l.MenuItemID]; !ok {
		return apperr.Validationf("menu item %s does not exist", l.MenuItemID)
	}
	for _, have := range st.lines {
		if have.UserID == l.UserID && have.MenuItemID == l.MenuItemID {
			have.Quantity = l.Quantity
			have.UnitPrice = l.UnitPrice
			have.Price = l.Price
			l.ID = have.ID
			l.CreatedAt = have.CreatedAt
			return nil
		}
	}
	l.CreatedAt = time.Now().UTC()
	cp := *l
	st.lines[l.ID] = &cp
	return nil
}

func (r *Cart) ListByUser(_ context.Context, userID string) ([]cart.Line, error) {
	defer r.v.lock()()
	return r.byUser(userID), nil
}

// LockByUser is ListByUser: a transaction already excludes every other
// writer.
func (r *Cart) LockByUser(_ context.Context, userID string) ([]cart.Line, error) {
	defer r.v.lock()()
	return r.byUser(userID), nil
}

func (r *Cart) byUser(userID string) []cart.Line {
	out := []cart.Line{}
	for _, l := range r.v.s.st.lines {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *Cart) ClearByUser(_ context.Context, userID string) (int64, error) {
	defer r.v.lock()()
	var n int64
	for id, l := range r.v.s.st.lines {
		if l.UserID == userID {
			delete(r.v.s.st.lines, id)
			n++
		}
	}
	return n, nil
}

func (r *Cart) DeleteLines(_ context.Context, userID string, ids []string) (int64, error) {
	defer r.v.lock()()
	var n int64
	for _, id := range ids {
		if l, ok := r.v.s.st.lines[id]; ok && l.UserID == userID {
			delete(r.v.s.st.lines, id)
			n++
		}
	}
	return n, nil
}
