package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkline/storefront/pkg/doordash"
	"github.com/forkline/storefront/pkg/enums"
	"github.com/forkline/storefront/pkg/uber"
)

type stubDoorDash struct {
	quoted   doordash.DeliveryRequest
	created  doordash.DeliveryRequest
	accepted string
}

func (s *stubDoorDash) Quote(_ context.Context, req doordash.DeliveryRequest) (*doordash.Delivery, error) {
	s.quoted = req
	return &doordash.Delivery{ExternalDeliveryID: req.ExternalDeliveryID, DeliveryStatus: "quote", Fee: 975, Currency: "USD"}, nil
}

func (s *stubDoorDash) AcceptQuote(_ context.Context, id string) (*doordash.Delivery, error) {
	s.accepted = id
	return &doordash.Delivery{ExternalDeliveryID: id, DeliveryStatus: "created", Fee: 975}, nil
}

func (s *stubDoorDash) CreateDelivery(_ context.Context, req doordash.DeliveryRequest) (*doordash.Delivery, error) {
	s.created = req
	return &doordash.Delivery{ExternalDeliveryID: req.ExternalDeliveryID, DeliveryStatus: "created", Fee: 1100}, nil
}

func (s *stubDoorDash) GetDelivery(_ context.Context, id string) (*doordash.Delivery, error) {
	return &doordash.Delivery{ExternalDeliveryID: id, DeliveryStatus: "delivered", TrackingURL: "https://track"}, nil
}

type stubUber struct {
	quoted  uber.QuoteRequest
	created uber.DeliveryRequest
}

func (s *stubUber) CreateQuote(_ context.Context, req uber.QuoteRequest) (*uber.Quote, error) {
	s.quoted = req
	expires := time.Date(2026, time.March, 4, 12, 15, 0, 0, time.UTC)
	return &uber.Quote{ID: "dqt_1", Fee: 599, Currency: "USD", Expires: &expires}, nil
}

func (s *stubUber) CreateDelivery(_ context.Context, req uber.DeliveryRequest) (*uber.Delivery, error) {
	s.created = req
	return &uber.Delivery{ID: "del_1", Status: "pending", Fee: 599}, nil
}

func (s *stubUber) GetDelivery(_ context.Context, id string) (*uber.Delivery, error) {
	return &uber.Delivery{ID: id, Status: "pickup"}, nil
}

func testJob() job {
	return job{
		ExternalID:   "fl-1",
		RestaurantID: "rest-1",
		Pickup:       Contact{Name: "Roma", Address: "1 Main St", Phone: "+1555"},
		Dropoff:      Contact{Name: "Ada", Address: "9 Elm St", Phone: "+1666", Instructions: "ring twice"},
		Items:        []Item{{Name: "Pizza", Quantity: 2}},
		OrderValue:   decimal.RequireFromString("24.999"),
	}
}

func TestDoorDashProvider(t *testing.T) {
	api := &stubDoorDash{}
	p := NewDoorDashProvider(api)
	assert.Equal(t, enums.DeliveryProviderDoorDash, p.Name())

	quote, err := p.Quote(context.Background(), testJob())
	require.NoError(t, err)
	assert.Equal(t, int64(2500), api.quoted.OrderValue)
	assert.Equal(t, "Ada", api.quoted.DropoffContactGivenName)
	assert.Equal(t, "ring twice", api.quoted.DropoffInstructions)
	assert.True(t, quote.Fee.Equal(decimal.RequireFromString("9.75")))
	assert.Equal(t, "fl-1", quote.ExternalID)

	j := testJob()
	j.QuoteID = "fl-0"
	got, err := p.Dispatch(context.Background(), j)
	require.NoError(t, err)
	assert.Equal(t, "fl-0", api.accepted)
	assert.Equal(t, "created", got.Status)

	got, err = p.Dispatch(context.Background(), testJob())
	require.NoError(t, err)
	assert.Equal(t, "fl-1", api.created.ExternalDeliveryID)
	assert.True(t, got.Fee.Equal(decimal.NewFromInt(11)))

	got, err = p.Lookup(context.Background(), "fl-1")
	require.NoError(t, err)
	assert.Equal(t, "delivered", got.Status)
	assert.Equal(t, "https://track", got.TrackingURL)
}

func TestUberProvider(t *testing.T) {
	api := &stubUber{}
	p := NewUberProvider(api)

	quote, err := p.Quote(context.Background(), testJob())
	require.NoError(t, err)
	assert.Equal(t, "rest-1", api.quoted.ExternalStoreID)
	assert.Equal(t, "dqt_1", quote.ExternalID)
	assert.Equal(t, uberQuotedStatus, quote.Status)
	require.NotNil(t, quote.ExpiresAt)

	j := testJob()
	j.QuoteID = quote.ExternalID
	got, err := p.Dispatch(context.Background(), j)
	require.NoError(t, err)
	assert.Equal(t, "del_1", got.ExternalID)
	assert.Equal(t, "dqt_1", api.created.QuoteID)
	assert.Equal(t, "fl-1", api.created.ExternalID)
	assert.Equal(t, int64(2500), api.created.ManifestTotalValue)
	require.Len(t, api.created.ManifestItems, 1)
	assert.Equal(t, 2, api.created.ManifestItems[0].Quantity)

	got, err = p.Lookup(context.Background(), "del_1")
	require.NoError(t, err)
	assert.Equal(t, "pickup", got.Status)
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(0), toCents(decimal.NewFromInt(-3)))
	assert.Equal(t, int64(1234), toCents(decimal.RequireFromString("12.34")))
	assert.True(t, fromCents(1234).Equal(decimal.RequireFromString("12.34")))
}
