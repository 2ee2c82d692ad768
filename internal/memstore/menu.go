package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/MikeMC777/littlelemon-api/internal/apperr"
	"github.com/MikeMC777/littlelemon-api/internal/menu"
)

// Menu implements menu.Repository.
type Menu struct{ v view }

func (r *Menu) Create(_ context.Context, it *menu.MenuItem) error {
	defer r.v.lock()()
	it.CreatedAt = time.Now().UTC()
	it.UpdatedAt = it.CreatedAt
	cp := *it
	r.v.s.st.menu[it.ID] = &cp
	return nil
}

func (r *Menu) GetByID(_ context.Context, id string) (*menu.MenuItem, error) {
	defer r.v.lock()()
	it, ok := r.v.s.st.menu[id]
	if !ok {
		return nil, apperr.NotFound("menu item")
	}
	cp := *it
	return &cp, nil
}

func (r *Menu) List(_ context.Context, q menu.Query) ([]menu.MenuItem, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	defer r.v.lock()()

	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := []menu.MenuItem{}
	for _, it := range r.v.s.st.menu {
		if search != "" && !strings.Contains(strings.ToLower(it.Title), search) {
			continue
		}
		if q.Category != "" && it.Category != q.Category {
			continue
		}
		out = append(out, *it)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch q.Ordering {
		case "price":
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case "-price":
			if !a.Price.Equal(b.Price) {
				return a.Price.GreaterThan(b.Price)
			}
		case "title":
			if a.Title != b.Title {
				return a.Title < b.Title
			}
		case "-title":
			if a.Title != b.Title {
				return a.Title > b.Title
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	})
	return page(out, q.Limit, q.Offset), nil
}

func (r *Menu) Update(_ context.Context, it *menu.MenuItem) error {
	defer r.v.lock()()
	if _, ok := r.v.s.st.menu[it.ID]; !ok {
		return apperr.NotFound("menu item")
	}
	it.UpdatedAt = time.Now().UTC()
	cp := *it
	r.v.s.st.menu[it.ID] = &cp
	return nil
}

// Delete refuses items that appear in an order and drops them from carts.
func (r *Menu) Delete(_ context.Context, id string) error {
	defer r.v.lock()()
	st := r.v.s.st
	if _, ok := st.menu[id]; !ok {
		return apperr.NotFound("menu item")
	}
	for _, o := range st.orders {
		for _, it := range o.Items {
			if it.MenuItemID == id {
				return apperr.Conflictf("menu item is referenced by existing orders")
			}
		}
	}
	for lid, l := range st.lines {
		if l.MenuItemID == id {
			delete(st.lines, lid)
		}
	}
	delete(st.menu, id)
	return nil
}
