package cart

import (
	"github.com/shopspring/decimal"

	cartsvc "github.com/forkline/storefront/internal/cart"
)

type addItemRequest struct {
	MenuItemID     string           `json:"menu_item_id" validate:"required,uuid"`
	Quantity       int              `json:"quantity" validate:"omitempty,min=1,max=99"`
	RestaurantName *string          `json:"restaurant_name,omitempty" validate:"omitempty,max=120"`
	PriceOverride  *decimal.Decimal `json:"price_override,omitempty"`
}

func (r addItemRequest) toInput() cartsvc.AddItemInput {
	return cartsvc.AddItemInput{
		MenuItemID:     r.MenuItemID,
		Quantity:       r.Quantity,
		RestaurantName: r.RestaurantName,
		PriceOverride:  r.PriceOverride,
	}
}

// updateQuantityRequest accepts zero and negative quantities; both remove the line.
type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,max=99"`
}

type locationRequest struct {
	Address string `json:"address" validate:"required"`
}

type locationResponse struct {
	Address *string `json:"address"`
}
