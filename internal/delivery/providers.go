package delivery

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/forkline/storefront/pkg/doordash"
	"github.com/forkline/storefront/pkg/enums"
	"github.com/forkline/storefront/pkg/uber"
)

const uberQuotedStatus = "quoted"

// job is a fully resolved delivery handed to a provider.
type job struct {
	ExternalID   string
	RestaurantID string
	QuoteID      string
	Pickup       Contact
	Dropoff      Contact
	Items        []Item
	OrderValue   decimal.Decimal
}

// Provider adapts one dispatch service to the neutral delivery types.
type Provider interface {
	Name() enums.DeliveryProvider
	Quote(ctx context.Context, j job) (*Delivery, error)
	Dispatch(ctx context.Context, j job) (*Delivery, error)
	Lookup(ctx context.Context, externalID string) (*Delivery, error)
}

type doordashAPI interface {
	Quote(ctx context.Context, req doordash.DeliveryRequest) (*doordash.Delivery, error)
	AcceptQuote(ctx context.Context, externalDeliveryID string) (*doordash.Delivery, error)
	CreateDelivery(ctx context.Context, req doordash.DeliveryRequest) (*doordash.Delivery, error)
	GetDelivery(ctx context.Context, externalDeliveryID string) (*doordash.Delivery, error)
}

type doordashProvider struct {
	api doordashAPI
}

// NewDoorDashProvider adapts a Drive client.
func NewDoorDashProvider(api doordashAPI) Provider {
	return &doordashProvider{api: api}
}

func (p *doordashProvider) Name() enums.DeliveryProvider {
	return enums.DeliveryProviderDoorDash
}

func (p *doordashProvider) Quote(ctx context.Context, j job) (*Delivery, error) {
	d, err := p.api.Quote(ctx, doordashRequest(j))
	if err != nil {
		return nil, err
	}
	return p.convert(d), nil
}

// Dispatch accepts the quote when one is given, which keeps the quoted fee.
func (p *doordashProvider) Dispatch(ctx context.Context, j job) (*Delivery, error) {
	var (
		d   *doordash.Delivery
		err error
	)
	if j.QuoteID != "" {
		d, err = p.api.AcceptQuote(ctx, j.QuoteID)
	} else {
		d, err = p.api.CreateDelivery(ctx, doordashRequest(j))
	}
	if err != nil {
		return nil, err
	}
	return p.convert(d), nil
}

func (p *doordashProvider) Lookup(ctx context.Context, externalID string) (*Delivery, error) {
	d, err := p.api.GetDelivery(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return p.convert(d), nil
}

func (p *doordashProvider) convert(d *doordash.Delivery) *Delivery {
	return &Delivery{
		Provider:    p.Name(),
		ExternalID:  d.ExternalDeliveryID,
		Status:      d.DeliveryStatus,
		Fee:         fromCents(d.Fee),
		Currency:    d.Currency,
		TrackingURL: d.TrackingURL,
		DropoffETA:  d.DropoffTimeEstimated,
		raw:         d,
	}
}

func doordashRequest(j job) doordash.DeliveryRequest {
	return doordash.DeliveryRequest{
		ExternalDeliveryID:      j.ExternalID,
		PickupAddress:           j.Pickup.Address,
		PickupBusinessName:      j.Pickup.Name,
		PickupPhoneNumber:       j.Pickup.Phone,
		PickupInstructions:      j.Pickup.Instructions,
		DropoffAddress:          j.Dropoff.Address,
		DropoffPhoneNumber:      j.Dropoff.Phone,
		DropoffContactGivenName: j.Dropoff.Name,
		DropoffInstructions:     j.Dropoff.Instructions,
		OrderValue:              toCents(j.OrderValue),
	}
}

type uberAPI interface {
	CreateQuote(ctx context.Context, req uber.QuoteRequest) (*uber.Quote, error)
	CreateDelivery(ctx context.Context, req uber.DeliveryRequest) (*uber.Delivery, error)
	GetDelivery(ctx context.Context, deliveryID string) (*uber.Delivery, error)
}

type uberProvider struct {
	api uberAPI
}

// NewUberProvider adapts a Direct client.
func NewUberProvider(api uberAPI) Provider {
	return &uberProvider{api: api}
}

func (p *uberProvider) Name() enums.DeliveryProvider {
	return enums.DeliveryProviderUber
}

func (p *uberProvider) Quote(ctx context.Context, j job) (*Delivery, error) {
	q, err := p.api.CreateQuote(ctx, uber.QuoteRequest{
		PickupAddress:   j.Pickup.Address,
		DropoffAddress:  j.Dropoff.Address,
		ExternalStoreID: j.RestaurantID,
	})
	if err != nil {
		return nil, err
	}
	return &Delivery{
		Provider:   p.Name(),
		ExternalID: q.ID,
		Status:     uberQuotedStatus,
		Fee:        fromCents(q.Fee),
		Currency:   q.Currency,
		DropoffETA: q.DropoffETA,
		ExpiresAt:  q.Expires,
		raw:        q,
	}, nil
}

func (p *uberProvider) Dispatch(ctx context.Context, j job) (*Delivery, error) {
	items := make([]uber.ManifestItem, 0, len(j.Items))
	for _, item := range j.Items {
		items = append(items, uber.ManifestItem{Name: item.Name, Quantity: item.Quantity, Size: "small"})
	}
	d, err := p.api.CreateDelivery(ctx, uber.DeliveryRequest{
		QuoteID:            j.QuoteID,
		ExternalID:         j.ExternalID,
		PickupName:         j.Pickup.Name,
		PickupAddress:      j.Pickup.Address,
		PickupPhoneNumber:  j.Pickup.Phone,
		DropoffName:        j.Dropoff.Name,
		DropoffAddress:     j.Dropoff.Address,
		DropoffPhoneNumber: j.Dropoff.Phone,
		ManifestItems:      items,
		ManifestTotalValue: toCents(j.OrderValue),
	})
	if err != nil {
		return nil, err
	}
	return p.convert(d), nil
}

func (p *uberProvider) Lookup(ctx context.Context, externalID string) (*Delivery, error) {
	d, err := p.api.GetDelivery(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return p.convert(d), nil
}

func (p *uberProvider) convert(d *uber.Delivery) *Delivery {
	return &Delivery{
		Provider:    p.Name(),
		ExternalID:  d.ID,
		Status:      d.Status,
		Fee:         fromCents(d.Fee),
		Currency:    d.Currency,
		TrackingURL: d.TrackingURL,
		DropoffETA:  d.DropoffETA,
		raw:         d,
	}
}

