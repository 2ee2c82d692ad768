package order

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/littlelemon-api/internal/apperr"
	"github.com/MikeMC777/littlelemon-api/internal/cart"
)

const (
	StatusOpen      = "open"
	StatusFulfilled = "fulfilled"
)

// MaxTotal is the largest total orders.total (NUMERIC(12,2)) holds.
var MaxTotal = decimal.RequireFromString("9999999999.99")

type Order struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user"`
	DeliveryCrewID *string         `json:"delivery_crew"`
	Status         string          `json:"status"`
	Total          decimal.Decimal `json:"total"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Items          []Item          `json:"items"`
}

// Item is a cart line frozen into an order. Its prices never change after
// checkout, whatever happens to the menu.
type Item struct {
	ID         string          `json:"id"`
	OrderID    string          `json:"order"`
	MenuItemID string          `json:"menuitem"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Price      decimal.Decimal `json:"price"`
}

// Freeze copies the priced fields of a cart line into an order item.
// ID and OrderID are left for the caller.
func Freeze(l cart.Line) Item {
	return Item{
		MenuItemID: l.MenuItemID,
		Quantity:   l.Quantity,
		UnitPrice:  l.UnitPrice,
		Price:      l.Price,
	}
}

// ListResponse represents the paginated response of orders.
// swagger:model
type ListResponse struct {
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Orders []Order `json:"orders"`
}

// UpdateOrderRequest payload of PUT and PATCH /orders/{id}.
// swagger:model UpdateOrderRequest
type UpdateOrderRequest struct {
	DeliveryCrew *string `json:"delivery_crew" example:"9a6c2f4e-0c1d-4b7e-8d8e-3a5b1f0c2d77"`
	Status       *string `json:"status"        example:"fulfilled"`
}

func validStatus(s string) error {
	if s != StatusOpen && s != StatusFulfilled {
		return apperr.Validationf("status must be %q or %q", StatusOpen, StatusFulfilled)
	}
	return nil
}

// MarshalJSON writes money with two decimal places.
func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	return json.Marshal(struct {
		plain
		Total string `json:"total"`
	}{plain(o), o.Total.StringFixed(2)})
}

func (it Item) MarshalJSON() ([]byte, error) {
	type plain Item
	return json.Marshal(struct {
		plain
		UnitPrice string `json:"unit_price"`
		Price     string `json:"price"`
	}{plain(it), it.UnitPrice.StringFixed(2), it.Price.StringFixed(2)})
}
