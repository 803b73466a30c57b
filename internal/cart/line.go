package cart

import (
	"github.com/shopspring/decimal"
)

// MaxLineQuantity caps the quantity of a single line.
const MaxLineQuantity = 99

// CatalogItem is the catalog record consumed by AddItem.
type CatalogItem struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Image        *string         `json:"image,omitempty"`
	RestaurantID string          `json:"restaurant_id"`
}

// Line is one purchasable unit in the basket.
type Line struct {
	LineID         string          `json:"line_id"`
	MenuItemID     string          `json:"menu_item_id"`
	Name           string          `json:"name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	RestaurantID   string          `json:"restaurant_id"`
	RestaurantName *string         `json:"restaurant_name,omitempty"`
	ImageRef       *string         `json:"image_ref,omitempty"`
}

// Subtotal is unit price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l Line) clone() Line {
	out := l
	if l.RestaurantName != nil {
		name := *l.RestaurantName
		out.RestaurantName = &name
	}
	if l.ImageRef != nil {
		ref := *l.ImageRef
		out.ImageRef = &ref
	}
	return out
}

func (l Line) wellFormed() bool {
	return l.LineID != "" && l.MenuItemID != "" && l.Quantity >= 1 && !l.UnitPrice.IsNegative()
}
