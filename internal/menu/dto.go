package menu

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/forkline/storefront/pkg/db/models"
)

// MenuItemDTO is the menu item payload returned to clients.
type MenuItemDTO struct {
	ID           uuid.UUID       `json:"id"`
	RestaurantID uuid.UUID       `json:"restaurant_id"`
	Name         string          `json:"name"`
	Description  *string         `json:"description,omitempty"`
	Category     *string         `json:"category,omitempty"`
	Price        decimal.Decimal `json:"price"`
	ImageURL     *string         `json:"image_url,omitempty"`
	IsAvailable  bool            `json:"is_available"`
	Position     int             `json:"position"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// FromModel maps a menu item row to its payload.
func FromModel(m *models.MenuItem) MenuItemDTO {
	return MenuItemDTO{
		ID:           m.ID,
		RestaurantID: m.RestaurantID,
		Name:         m.Name,
		Description:  m.Description,
		Category:     m.Category,
		Price:        m.Price,
		ImageURL:     m.ImageURL,
		IsAvailable:  m.IsAvailable,
		Position:     m.Position,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// CreateMenuItemInput captures the fields for a new menu item.
type CreateMenuItemInput struct {
	Name        string
	Description *string
	Category    *string
	Price       decimal.Decimal
	ImageURL    *string
	IsAvailable *bool
	Position    int
}

func (in CreateMenuItemInput) toModel(restaurantID uuid.UUID) *models.MenuItem {
	available := true
	if in.IsAvailable != nil {
		available = *in.IsAvailable
	}
	return &models.MenuItem{
		RestaurantID: restaurantID,
		Name:         strings.TrimSpace(in.Name),
		Description:  trimmedPtr(in.Description),
		Category:     trimmedPtr(in.Category),
		Price:        in.Price,
		ImageURL:     trimmedPtr(in.ImageURL),
		IsAvailable:  available,
		Position:     in.Position,
	}
}

// UpdateMenuItemInput carries the optional fields of a partial update.
type UpdateMenuItemInput struct {
	Name        *string
	Description *string
	Category    *string
	Price       *decimal.Decimal
	ImageURL    *string
	IsAvailable *bool
	Position    *int
}

func applyUpdate(item *models.MenuItem, in UpdateMenuItemInput) {
	if in.Name != nil {
		item.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		item.Description = trimmedPtr(in.Description)
	}
	if in.Category != nil {
		item.Category = trimmedPtr(in.Category)
	}
	if in.Price != nil {
		item.Price = *in.Price
	}
	if in.ImageURL != nil {
		item.ImageURL = trimmedPtr(in.ImageURL)
	}
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}
	if in.Position != nil {
		item.Position = *in.Position
	}
}

// trimmedPtr trims the value and maps blank strings to nil.
func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
