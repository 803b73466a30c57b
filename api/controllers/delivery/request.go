package delivery

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartsvc "github.com/forkline/storefront/internal/cart"
	deliverysvc "github.com/forkline/storefront/internal/delivery"
)

type contactRequest struct {
	Name         string `json:"name" validate:"omitempty,max=120"`
	Address      string `json:"address" validate:"omitempty,max=512"`
	Phone        string `json:"phone" validate:"omitempty,e164"`
	Instructions string `json:"instructions" validate:"omitempty,max=280"`
}

func (c contactRequest) toContact(fallbackAddress string) deliverysvc.Contact {
	address := strings.TrimSpace(c.Address)
	if address == "" {
		address = fallbackAddress
	}
	return deliverysvc.Contact{
		Name:         c.Name,
		Address:      address,
		Phone:        c.Phone,
		Instructions: c.Instructions,
	}
}

type quoteRequest struct {
	RestaurantID uuid.UUID      `json:"restaurant_id" validate:"required"`
	Dropoff      contactRequest `json:"dropoff"`
}

type dispatchRequest struct {
	Provider     string         `json:"provider" validate:"required,oneof=doordash uber"`
	RestaurantID uuid.UUID      `json:"restaurant_id" validate:"required"`
	QuoteID      string         `json:"quote_id" validate:"omitempty,max=128"`
	Dropoff      contactRequest `json:"dropoff"`
}

// cartManifest turns the cart lines of one restaurant into courier items and
// their combined value.
func cartManifest(lines []cartsvc.Line, restaurantID uuid.UUID) ([]deliverysvc.Item, decimal.Decimal) {
	items := []deliverysvc.Item{}
	total := decimal.Zero
	for _, line := range lines {
		if line.RestaurantID != restaurantID.String() {
			continue
		}
		items = append(items, deliverysvc.Item{Name: line.Name, Quantity: line.Quantity})
		total = total.Add(line.Subtotal())
	}
	return items, total
}
