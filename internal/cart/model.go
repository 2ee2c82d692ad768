package cart

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// MaxQuantity caps a single cart line.
const MaxQuantity = 1000

// MaxLinePrice is the largest line price cart_lines.price (NUMERIC(10,2)) holds.
var MaxLinePrice = decimal.RequireFromString("99999999.99")

// Line is one menu item in a user's cart. Price is Quantity × UnitPrice,
// with UnitPrice taken from the menu when the line was last written.
type Line struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user"`
	MenuItemID string          `json:"menuitem"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Price      decimal.Decimal `json:"price"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AddLineRequest payload of POST /cart/menu-items/.
// swagger:model AddLineRequest
type AddLineRequest struct {
	MenuItem string `json:"menuitem" example:"5b0f8c1e-4a43-4c43-9a0e-0f0b8f2d6a11"`
	Quantity int    `json:"quantity" example:"2"`
}

// LinePrice is quantity × unit, rounded to cents.
func LinePrice(unit decimal.Decimal, quantity int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// MarshalJSON writes money with two decimal places.
func (l Line) MarshalJSON() ([]byte, error) {
	type plain Line
	return json.Marshal(struct {
		plain
		UnitPrice string `json:"unit_price"`
		Price     string `json:"price"`
	}{plain(l), l.UnitPrice.StringFixed(2), l.Price.StringFixed(2)})
}
