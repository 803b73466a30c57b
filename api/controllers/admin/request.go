package admin

import (
	"github.com/shopspring/decimal"

	"github.com/forkline/storefront/internal/menu"
	"github.com/forkline/storefront/internal/restaurants"
	"github.com/forkline/storefront/pkg/types"
)

type createRestaurantRequest struct {
	Slug        string                `json:"slug" validate:"required,max=80"`
	Name        string                `json:"name" validate:"required,max=120"`
	Description *string               `json:"description,omitempty" validate:"omitempty,max=2000"`
	Address     string                `json:"address" validate:"required,max=512"`
	Phone       *string               `json:"phone,omitempty" validate:"omitempty,e164"`
	ImageURL    *string               `json:"image_url,omitempty" validate:"omitempty,url"`
	Schedule    *types.WeeklySchedule `json:"schedule,omitempty"`
	TimeZone    string                `json:"time_zone,omitempty"`
	PickupLat   *float64              `json:"pickup_lat,omitempty"`
	PickupLng   *float64              `json:"pickup_lng,omitempty"`
}

func (r createRestaurantRequest) toInput() restaurants.CreateRestaurantInput {
	return restaurants.CreateRestaurantInput{
		Slug:        r.Slug,
		Name:        r.Name,
		Description: r.Description,
		Address:     r.Address,
		Phone:       r.Phone,
		ImageURL:    r.ImageURL,
		Schedule:    r.Schedule,
		TimeZone:    r.TimeZone,
		PickupLat:   r.PickupLat,
		PickupLng:   r.PickupLng,
	}
}

type updateRestaurantRequest struct {
	Slug        *string  `json:"slug,omitempty" validate:"omitempty,max=80"`
	Name        *string  `json:"name,omitempty" validate:"omitempty,max=120"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Address     *string  `json:"address,omitempty" validate:"omitempty,max=512"`
	Phone       *string  `json:"phone,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
	PickupLat   *float64 `json:"pickup_lat,omitempty"`
	PickupLng   *float64 `json:"pickup_lng,omitempty"`
}

func (r updateRestaurantRequest) toInput() restaurants.UpdateRestaurantInput {
	return restaurants.UpdateRestaurantInput{
		Slug:        r.Slug,
		Name:        r.Name,
		Description: r.Description,
		Address:     r.Address,
		Phone:       r.Phone,
		ImageURL:    r.ImageURL,
		PickupLat:   r.PickupLat,
		PickupLng:   r.PickupLng,
	}
}

type flagsRequest struct {
	ManualOpen        *bool `json:"manual_open,omitempty" validate:"required_without=TemporarilyClosed"`
	TemporarilyClosed *bool `json:"temporarily_closed,omitempty" validate:"required_without=ManualOpen"`
}

type scheduleRequest struct {
	Schedule *types.WeeklySchedule `json:"schedule"`
	TimeZone *string               `json:"time_zone,omitempty"`
}

type createMenuItemRequest struct {
	Name        string          `json:"name" validate:"required,max=120"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category    *string         `json:"category,omitempty" validate:"omitempty,max=80"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"image_url,omitempty" validate:"omitempty,url"`
	IsAvailable *bool           `json:"is_available,omitempty"`
	Position    int             `json:"position" validate:"min=0"`
}

func (r createMenuItemRequest) toInput() menu.CreateMenuItemInput {
	return menu.CreateMenuItemInput{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		IsAvailable: r.IsAvailable,
		Position:    r.Position,
	}
}

type updateMenuItemRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,max=120"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category    *string          `json:"category,omitempty" validate:"omitempty,max=80"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	IsAvailable *bool            `json:"is_available,omitempty"`
	Position    *int             `json:"position,omitempty" validate:"omitempty,min=0"`
}

func (r updateMenuItemRequest) toInput() menu.UpdateMenuItemInput {
	return menu.UpdateMenuItemInput{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		IsAvailable: r.IsAvailable,
		Position:    r.Position,
	}
}
