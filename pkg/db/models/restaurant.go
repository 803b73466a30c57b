package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forkline/storefront/pkg/types"
)

// Restaurant is a storefront location with its opening flags and schedule.
type Restaurant struct {
	ID                uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Slug              string             `gorm:"column:slug;not null;uniqueIndex"`
	Name              string             `gorm:"column:name;not null"`
	Description       *string            `gorm:"column:description"`
	Address           string             `gorm:"column:address;not null"`
	Phone             *string            `gorm:"column:phone"`
	ImageURL          *string            `gorm:"column:image_url"`
	ManualOpen        bool               `gorm:"column:manual_open;not null"`
	TemporarilyClosed bool               `gorm:"column:temporarily_closed;not null"`
	Schedule          types.NullSchedule `gorm:"column:schedule;type:jsonb"`
	TimeZone          string             `gorm:"column:time_zone;not null;default:'UTC'"`
	PickupLat         *float64           `gorm:"column:pickup_lat"`
	PickupLng         *float64           `gorm:"column:pickup_lng"`
	CreatedAt         time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an id when the caller left it empty.
func (r *Restaurant) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
