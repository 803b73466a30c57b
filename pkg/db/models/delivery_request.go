package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/forkline/storefront/pkg/enums"
	"github.com/forkline/storefront/pkg/types"
)

// DeliveryRequest is the audit row written for every call to a dispatch provider.
type DeliveryRequest struct {
	ID           uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	Provider     enums.DeliveryProvider    `gorm:"column:provider;not null;index"`
	Kind         enums.DeliveryRequestKind `gorm:"column:kind;not null"`
	ExternalID   *string                   `gorm:"column:external_id;index"`
	RestaurantID *uuid.UUID                `gorm:"column:restaurant_id;type:uuid"`
	Status       string                    `gorm:"column:status;not null"`
	TrackingURL  *string                   `gorm:"column:tracking_url"`
	Fee          *decimal.Decimal          `gorm:"column:fee;type:numeric(10,2)"`
	RawResponse  types.RawJSON             `gorm:"column:raw_response;type:jsonb"`
	CreatedAt    time.Time                 `gorm:"column:created_at;autoCreateTime"`
}

func (d *DeliveryRequest) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
