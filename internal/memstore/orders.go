package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/MikeMC777/littlelemon-api/internal/apperr"
	"github.com/MikeMC777/littlelemon-api/internal/order"
)

// Orders implements order.Repository.
type Orders struct{ v view }

func copyOrder(o *order.Order) *order.Order {
	cp := *o
	if o.DeliveryCrewID != nil {
		crew := *o.DeliveryCrewID
		cp.DeliveryCrewID = &crew
	}
	cp.Items = append([]order.Item{}, o.Items...)
	return &cp
}

func (r *Orders) Create(_ context.Context, o *order.Order) error {
	defer r.v.lock()()
	st := r.v.s.st
	if _, ok := st.users[o.UserID]; !ok {
		return apperr.Validationf("user %s does not exist", o.UserID)
	}
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	stored := copyOrder(o)
	stored.Items = []order.Item{}
	st.orders[o.ID] = stored
	return nil
}

func (r *Orders) CreateItems(_ context.Context, items []order.Item) error {
	defer r.v.lock()()
	st := r.v.s.st
	for _, it := range items {
		o, ok := st.orders[it.OrderID]
		if !ok {
			return apperr.Validationf("order %s does not exist", it.OrderID)
		}
		if _, ok := st.menu[it.MenuItemID]; !ok {
			return apperr.Validationf("menu item %s does not exist", it.MenuItemID)
		}
		o.Items = append(o.Items, it)
	}
	return nil
}

func (r *Orders) List(_ context.Context, f order.Filter) ([]order.Order, error) {
	defer r.v.lock()()
	out := []order.Order{}
	for _, o := range r.v.s.st.orders {
		if f.OwnerID != "" && o.UserID != f.OwnerID {
			continue
		}
		out = append(out, *copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Limit, f.Offset), nil
}

func (r *Orders) Get(_ context.Context, id, ownerID string) (*order.Order, error) {
	defer r.v.lock()()
	o, ok := r.v.s.st.orders[id]
	if !ok || (ownerID != "" && o.UserID != ownerID) {
		return nil, apperr.NotFound("order")
	}
	return copyOrder(o), nil
}

func (r *Orders) Update(_ context.Context, o *order.Order) error {
	defer r.v.lock()()
	st := r.v.s.st
	have, ok := st.orders[o.ID]
	if !ok {
		return apperr.NotFound("order")
	}
	if o.DeliveryCrewID != nil {
		if _, ok := st.users[*o.DeliveryCrewID]; !ok {
			return apperr.Validationf("delivery crew user does not exist")
		}
	}
	o.UpdatedAt = time.Now().UTC()
	have.Status = o.Status
	have.DeliveryCrewID = copyOrder(o).DeliveryCrewID
	have.UpdatedAt = o.UpdatedAt
	return nil
}

func (r *Orders) Delete(_ context.Context, id, ownerID string) error {
	defer r.v.lock()()
	o, ok := r.v.s.st.orders[id]
	if !ok || (ownerID != "" && o.UserID != ownerID) {
		return apperr.NotFound("order")
	}
	delete(r.v.s.st.orders, id)
	return nil
}
