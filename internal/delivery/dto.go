package delivery

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/forkline/storefront/pkg/db/models"
	"github.com/forkline/storefront/pkg/enums"
)

// Contact is one end of a delivery.
type Contact struct {
	Name         string `json:"name,omitempty"`
	Address      string `json:"address"`
	Phone        string `json:"phone,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// Item is one manifest line handed to the courier.
type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// QuoteInput asks every configured provider to price a delivery from a restaurant.
type QuoteInput struct {
	RestaurantID uuid.UUID
	Dropoff      Contact
	OrderValue   decimal.Decimal
}

// DispatchInput books a courier with one provider.
type DispatchInput struct {
	Provider     enums.DeliveryProvider
	RestaurantID uuid.UUID
	QuoteID      string
	Dropoff      Contact
	Items        []Item
	OrderValue   decimal.Decimal
}

// Delivery is the provider-neutral view of a quote or a dispatched delivery.
type Delivery struct {
	Provider    enums.DeliveryProvider `json:"provider"`
	ExternalID  string                 `json:"external_id"`
	Status      string                 `json:"status"`
	Fee         decimal.Decimal        `json:"fee"`
	Currency    string                 `json:"currency,omitempty"`
	TrackingURL string                 `json:"tracking_url,omitempty"`
	DropoffETA  *time.Time             `json:"dropoff_eta,omitempty"`
	ExpiresAt   *time.Time             `json:"expires_at,omitempty"`

	raw any
}

// ProviderFailure reports a provider that could not quote.
type ProviderFailure struct {
	Provider enums.DeliveryProvider `json:"provider"`
	Message  string                 `json:"message"`
}

// QuoteResult carries the quotes that succeeded and the providers that failed.
type QuoteResult struct {
	Quotes   []Delivery        `json:"quotes"`
	Failures []ProviderFailure `json:"failures,omitempty"`
}

// RequestDTO is an audit row as shown to admins.
type RequestDTO struct {
	ID           uuid.UUID                 `json:"id"`
	Provider     enums.DeliveryProvider    `json:"provider"`
	Kind         enums.DeliveryRequestKind `json:"kind"`
	ExternalID   *string                   `json:"external_id,omitempty"`
	RestaurantID *uuid.UUID                `json:"restaurant_id,omitempty"`
	Status       string                    `json:"status"`
	TrackingURL  *string                   `json:"tracking_url,omitempty"`
	Fee          *decimal.Decimal          `json:"fee,omitempty"`
	RawResponse  json.RawMessage           `json:"raw_response,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
}

// RequestList is one page of audit rows, newest first.
type RequestList struct {
	Requests   []RequestDTO `json:"requests"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func requestFromModel(m models.DeliveryRequest) RequestDTO {
	dto := RequestDTO{
		ID:           m.ID,
		Provider:     m.Provider,
		Kind:         m.Kind,
		ExternalID:   m.ExternalID,
		RestaurantID: m.RestaurantID,
		Status:       m.Status,
		TrackingURL:  m.TrackingURL,
		Fee:          m.Fee,
		CreatedAt:    m.CreatedAt,
	}
	if len(m.RawResponse) > 0 {
		dto.RawResponse = json.RawMessage(m.RawResponse)
	}
	return dto
}

func (c Contact) normalized() Contact {
	return Contact{
		Name:         strings.TrimSpace(c.Name),
		Address:      strings.TrimSpace(c.Address),
		Phone:        strings.TrimSpace(c.Phone),
		Instructions: strings.TrimSpace(c.Instructions),
	}
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Shift(-2)
}

func toCents(value decimal.Decimal) int64 {
	if value.IsNegative() {
		return 0
	}
	return value.Shift(2).Round(0).IntPart()
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
