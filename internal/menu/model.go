package menu

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/littlelemon-api/internal/apperr"
)

// MaxPrice is the largest price menu_items.price (NUMERIC(8,2)) holds.
var MaxPrice = decimal.RequireFromString("999999.99")

type MenuItem struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MarshalJSON writes the price with two decimal places.
func (it MenuItem) MarshalJSON() ([]byte, error) {
	type plain MenuItem
	return json.Marshal(struct {
		plain
		Price string `json:"price"`
	}{plain(it), it.Price.StringFixed(2)})
}

// ListResponse represents the paginated response of menu items.
// swagger:model
type ListResponse struct {
	Search   string     `json:"search,omitempty"`
	Category string     `json:"category,omitempty"`
	Ordering string     `json:"ordering,omitempty"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
	Items    []MenuItem `json:"items"`
}

// CreateMenuItemRequest payload of creation.
// swagger:model CreateMenuItemRequest
type CreateMenuItemRequest struct {
	Title    string          `json:"title"    example:"Greek Salad"`
	Price    decimal.Decimal `json:"price"    example:"12.50"`
	Category string          `json:"category" example:"starters"`
}

// UpdateMenuItemRequest payload of PATCH; absent fields keep their value.
// PUT uses the same shape but requires every field.
// swagger:model UpdateMenuItemRequest
type UpdateMenuItemRequest struct {
	Title    *string          `json:"title"`
	Price    *decimal.Decimal `json:"price"`
	Category *string          `json:"category"`
}

func (r CreateMenuItemRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return apperr.Validationf("title is required")
	}
	if strings.TrimSpace(r.Category) == "" {
		return apperr.Validationf("category is required")
	}
	return validatePrice(r.Price)
}

// Apply merges r into it. With full set, every field must be present.
func (r UpdateMenuItemRequest) Apply(it *MenuItem, full bool) error {
	if full && (r.Title == nil || r.Price == nil || r.Category == nil) {
		return apperr.Validationf("title, price and category are required")
	}
	if r.Title != nil {
		if strings.TrimSpace(*r.Title) == "" {
			return apperr.Validationf("title cannot be empty")
		}
		it.Title = strings.TrimSpace(*r.Title)
	}
	if r.Category != nil {
		if strings.TrimSpace(*r.Category) == "" {
			return apperr.Validationf("category cannot be empty")
		}
		it.Category = strings.TrimSpace(*r.Category)
	}
	if r.Price != nil {
		if err := validatePrice(*r.Price); err != nil {
			return err
		}
		it.Price = *r.Price
	}
	return nil
}

func validatePrice(p decimal.Decimal) error {
	if !p.IsPositive() {
		return apperr.Validationf("price must be greater than zero")
	}
	if p.GreaterThan(MaxPrice) {
		return apperr.Validationf("price must be at most %s", MaxPrice.StringFixed(2))
	}
	if !p.Equal(p.Truncate(2)) {
		return apperr.Validationf("price must have at most two decimal places")
	}
	return nil
}
