package restaurants

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forkline/storefront/internal/status"
	"github.com/forkline/storefront/pkg/db/models"
	"github.com/forkline/storefront/pkg/types"
)

// RestaurantDTO is the restaurant payload returned to clients, with its
// current opening status.
type RestaurantDTO struct {
	ID                uuid.UUID             `json:"id"`
	Slug              string                `json:"slug"`
	Name              string                `json:"name"`
	Description       *string               `json:"description,omitempty"`
	Address           string                `json:"address"`
	Phone             *string               `json:"phone,omitempty"`
	ImageURL          *string               `json:"image_url,omitempty"`
	ManualOpen        bool                  `json:"manual_open"`
	TemporarilyClosed bool                  `json:"temporarily_closed"`
	Schedule          *types.WeeklySchedule `json:"schedule"`
	TimeZone          string                `json:"time_zone"`
	PickupLat         *float64              `json:"pickup_lat,omitempty"`
	PickupLng         *float64              `json:"pickup_lng,omitempty"`
	Status            StatusDTO             `json:"status"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// StatusDTO is the evaluated verdict attached to a restaurant.
type StatusDTO struct {
	status.Result
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// ListResult is one page of restaurants.
type ListResult struct {
	Restaurants []RestaurantDTO `json:"restaurants"`
	NextCursor  string          `json:"next_cursor,omitempty"`
}

func fromModel(r *models.Restaurant, st StatusDTO) RestaurantDTO {
	return RestaurantDTO{
		ID:                r.ID,
		Slug:              r.Slug,
		Name:              r.Name,
		Description:       r.Description,
		Address:           r.Address,
		Phone:             r.Phone,
		ImageURL:          r.ImageURL,
		ManualOpen:        r.ManualOpen,
		TemporarilyClosed: r.TemporarilyClosed,
		Schedule:          r.Schedule.Ptr(),
		TimeZone:          r.TimeZone,
		PickupLat:         r.PickupLat,
		PickupLng:         r.PickupLng,
		Status:            st,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

// statusInput maps a restaurant row onto the evaluator input.
func statusInput(r *models.Restaurant) status.Input {
	return status.Input{
		ManualOpen:        r.ManualOpen,
		TemporarilyClosed: r.TemporarilyClosed,
		Schedule:          r.Schedule.Ptr(),
		TimeZone:          r.TimeZone,
	}
}

// CreateRestaurantInput captures the fields for a new restaurant.
type CreateRestaurantInput struct {
	Slug        string
	Name        string
	Description *string
	Address     string
	Phone       *string
	ImageURL    *string
	Schedule    *types.WeeklySchedule
	TimeZone    string
	PickupLat   *float64
	PickupLng   *float64
}

func (in CreateRestaurantInput) toModel() *models.Restaurant {
	return &models.Restaurant{
		Slug:        strings.ToLower(strings.TrimSpace(in.Slug)),
		Name:        strings.TrimSpace(in.Name),
		Description: trimmedPtr(in.Description),
		Address:     strings.TrimSpace(in.Address),
		Phone:       trimmedPtr(in.Phone),
		ImageURL:    trimmedPtr(in.ImageURL),
		ManualOpen:  true,
		Schedule:    types.NewNullSchedule(in.Schedule),
		TimeZone:    normalizeZone(in.TimeZone),
		PickupLat:   in.PickupLat,
		PickupLng:   in.PickupLng,
	}
}

// UpdateRestaurantInput carries the optional profile fields of a partial update.
type UpdateRestaurantInput struct {
	Slug        *string
	Name        *string
	Description *string
	Address     *string
	Phone       *string
	ImageURL    *string
	PickupLat   *float64
	PickupLng   *float64
}

func applyUpdate(r *models.Restaurant, in UpdateRestaurantInput) {
	if in.Slug != nil {
		r.Slug = strings.ToLower(strings.TrimSpace(*in.Slug))
	}
	if in.Name != nil {
		r.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		r.Description = trimmedPtr(in.Description)
	}
	if in.Address != nil {
		r.Address = strings.TrimSpace(*in.Address)
	}
	if in.Phone != nil {
		r.Phone = trimmedPtr(in.Phone)
	}
	if in.ImageURL != nil {
		r.ImageURL = trimmedPtr(in.ImageURL)
	}
	if in.PickupLat != nil {
		r.PickupLat = in.PickupLat
	}
	if in.PickupLng != nil {
		r.PickupLng = in.PickupLng
	}
}

// FlagsInput toggles the manual override and the temporary closure.
type FlagsInput struct {
	ManualOpen        *bool
	TemporarilyClosed *bool
}

// ScheduleInput replaces the weekly hours and time zone. A nil Schedule
// clears the hours.
type ScheduleInput struct {
	Schedule *types.WeeklySchedule
	TimeZone *string
}

func normalizeZone(zone string) string {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		return "UTC"
	}
	return zone
}

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
