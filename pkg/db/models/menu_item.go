package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MenuItem is a purchasable dish offered by a restaurant.
type MenuItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	RestaurantID uuid.UUID       `gorm:"column:restaurant_id;type:uuid;not null;index"`
	Name         string          `gorm:"column:name;not null"`
	Description  *string         `gorm:"column:description"`
	Category     *string         `gorm:"column:category"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	ImageURL     *string         `gorm:"column:image_url"`
	IsAvailable  bool            `gorm:"column:is_available;not null"`
	Position     int             `gorm:"column:position;not null;default:0"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *MenuItem) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
