// Package delivery prices and books couriers through third-party dispatch
// providers and keeps an audit trail of every provider call.
package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/forkline/storefront/internal/restaurants"
	"github.com/forkline/storefront/pkg/db/models"
	"github.com/forkline/storefront/pkg/enums"
	pkgerrors "github.com/forkline/storefront/pkg/errors"
	"github.com/forkline/storefront/pkg/logger"
	"github.com/forkline/storefront/pkg/pagination"
)

const (
	externalIDPrefix = "fl-"
	statusFailed     = "failed"
)

type restaurantDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*restaurants.RestaurantDTO, error)
	AcceptingOrders(ctx context.Context, restaurantID string) (bool, error)
}

type auditLog interface {
	Record(ctx context.Context, entry *models.DeliveryRequest) error
	List(ctx context.Context, params pagination.Params) ([]models.DeliveryRequest, error)
}

// Service exposes delivery quoting, dispatch and tracking.
type Service interface {
	Providers() []enums.DeliveryProvider
	Quotes(ctx context.Context, input QuoteInput) (*QuoteResult, error)
	Dispatch(ctx context.Context, input DispatchInput) (*Delivery, error)
	Status(ctx context.Context, provider enums.DeliveryProvider, externalID string) (*Delivery, error)
	ListRequests(ctx context.Context, params pagination.Params) (*RequestList, error)
}

// ServiceParams wires the delivery service. Providers may be empty when no
// dispatch credentials are configured.
type ServiceParams struct {
	Providers   []Provider
	Restaurants restaurantDirectory
	Audit       auditLog
	Logger      *logger.Logger
	NewID       func() string
}

type service struct {
	providers   []Provider
	byName      map[enums.DeliveryProvider]Provider
	restaurants restaurantDirectory
	audit       auditLog
	logg        *logger.Logger
	newID       func() string
}

// NewService constructs a delivery service.
func NewService(params ServiceParams) (Service, error) {
	if params.Restaurants == nil {
		return nil, fmt.Errorf("restaurant directory required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit log required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	byName := make(map[enums.DeliveryProvider]Provider, len(params.Providers))
	providers := make([]Provider, 0, len(params.Providers))
	for _, p := range params.Providers {
		if p == nil {
			continue
		}
		if _, dup := byName[p.Name()]; dup {
			return nil, fmt.Errorf("duplicate delivery provider %s", p.Name())
		}
		byName[p.Name()] = p
		providers = append(providers, p)
	}
	newID := params.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &service{
		providers:   providers,
		byName:      byName,
		restaurants: params.Restaurants,
		audit:       params.Audit,
		logg:        params.Logger,
		newID:       newID,
	}, nil
}

func (s *service) Providers() []enums.DeliveryProvider {
	out := make([]enums.DeliveryProvider, 0, len(s.providers))
	for _, p := range s.providers {
		out = append(out, p.Name())
	}
	return out
}

// Quotes asks every configured provider for a price. It fails only when no
// provider returns a quote.
func (s *service) Quotes(ctx context.Context, input QuoteInput) (*QuoteResult, error) {
	if len(s.providers) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotConfigured, "no delivery providers configured")
	}
	dropoff := input.Dropoff.normalized()
	if dropoff.Address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dropoff address is required")
	}
	pickup, err := s.pickup(ctx, input.RestaurantID)
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithRestaurantID(ctx, input.RestaurantID.String())
	result := &QuoteResult{Quotes: []Delivery{}}
	var errs error
	for _, p := range s.providers {
		j := job{
			ExternalID:   externalIDPrefix + s.newID(),
			RestaurantID: input.RestaurantID.String(),
			Pickup:       pickup,
			Dropoff:      dropoff,
			OrderValue:   input.OrderValue,
		}
		quote, err := p.Quote(ctx, j)
		s.record(ctx, p.Name(), enums.DeliveryRequestQuote, &input.RestaurantID, quote, err)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			result.Failures = append(result.Failures, ProviderFailure{Provider: p.Name(), Message: failureMessage(err)})
			continue
		}
		result.Quotes = append(result.Quotes, *quote)
	}

	if len(result.Quotes) == 0 {
		s.logg.Error(ctx, "delivery.quotes_unavailable", errs)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "no delivery quotes available").
			WithDetails(map[string]any{"failures": result.Failures})
	}
	return result, nil
}

// Dispatch books a courier. The restaurant must be accepting orders.
func (s *service) Dispatch(ctx context.Context, input DispatchInput) (*Delivery, error) {
	p, err := s.provider(input.Provider)
	if err != nil {
		return nil, err
	}
	dropoff := input.Dropoff.normalized()
	if err := validateDispatch(dropoff, input.Items); err != nil {
		return nil, err
	}

	open, err := s.restaurants.AcceptingOrders(ctx, input.RestaurantID.String())
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, pkgerrors.New(pkgerrors.CodeClosed, "restaurant is not accepting orders")
	}
	pickup, err := s.pickup(ctx, input.RestaurantID)
	if err != nil {
		return nil, err
	}
	if pickup.Phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant has no pickup phone number")
	}

	j := job{
		ExternalID:   externalIDPrefix + s.newID(),
		RestaurantID: input.RestaurantID.String(),
		QuoteID:      strings.TrimSpace(input.QuoteID),
		Pickup:       pickup,
		Dropoff:      dropoff,
		Items:        input.Items,
		OrderValue:   input.OrderValue,
	}
	ctx = s.logg.WithFields(s.logg.WithRestaurantID(ctx, j.RestaurantID), map[string]any{
		"provider":    p.Name(),
		"external_id": j.ExternalID,
	})

	delivery, err := p.Dispatch(ctx, j)
	s.record(ctx, p.Name(), enums.DeliveryRequestDispatch, &input.RestaurantID, delivery, err)
	if err != nil {
		s.logg.Error(ctx, "delivery.dispatch_failed", err)
		return nil, err
	}
	s.logg.Info(ctx, "delivery.dispatched")
	return delivery, nil
}

func (s *service) Status(ctx context.Context, provider enums.DeliveryProvider, externalID string) (*Delivery, error) {
	p, err := s.provider(provider)
	if err != nil {
		return nil, err
	}
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "external id is required")
	}
	delivery, err := p.Lookup(ctx, externalID)
	s.record(ctx, p.Name(), enums.DeliveryRequestLookup, nil, delivery, err)
	if err != nil {
		return nil, err
	}
	return delivery, nil
}

func (s *service) ListRequests(ctx context.Context, params pagination.Params) (*RequestList, error) {
	if _, _, err := parseRequestCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.audit.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list delivery requests")
	}
	page, next := pagination.Page(rows, params.Limit, requestCursor)
	out := make([]RequestDTO, 0, len(page))
	for _, row := range page {
		out = append(out, requestFromModel(row))
	}
	return &RequestList{Requests: out, NextCursor: next}, nil
}

func (s *service) provider(name enums.DeliveryProvider) (Provider, error) {
	if !name.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery provider").
			WithDetails(map[string]any{"provider": name})
	}
	p, ok := s.byName[name]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotConfigured, fmt.Sprintf("%s deliveries are not configured", name))
	}
	return p, nil
}

func (s *service) pickup(ctx context.Context, restaurantID uuid.UUID) (Contact, error) {
	if restaurantID == uuid.Nil {
		return Contact{}, pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}
	r, err := s.restaurants.Get(ctx, restaurantID)
	if err != nil {
		return Contact{}, err
	}
	c := Contact{Name: r.Name, Address: r.Address}
	if r.Phone != nil {
		c.Phone = *r.Phone
	}
	return c.normalized(), nil
}

// record appends one audit row. Audit failures are logged and never fail the call.
func (s *service) record(ctx context.Context, provider enums.DeliveryProvider, kind enums.DeliveryRequestKind, restaurantID *uuid.UUID, delivery *Delivery, callErr error) {
	entry := &models.DeliveryRequest{
		Provider:     provider,
		Kind:         kind,
		RestaurantID: restaurantID,
		Status:       statusFailed,
	}
	var raw any
	if callErr != nil {
		raw = map[string]string{"error": failureMessage(callErr)}
	} else if delivery != nil {
		entry.Status = delivery.Status
		entry.ExternalID = optionalString(delivery.ExternalID)
		entry.TrackingURL = optionalString(delivery.TrackingURL)
		fee := delivery.Fee
		entry.Fee = &fee
		raw = delivery.raw
	}
	if entry.Status == "" {
		entry.Status = "unknown"
	}
	if raw != nil {
		if payload, err := json.Marshal(raw); err == nil {
			entry.RawResponse = payload
		}
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logg.Error(ctx, "delivery.audit_write_failed", err)
	}
}

func validateDispatch(dropoff Contact, items []Item) error {
	var missing []string
	if dropoff.Name == "" {
		missing = append(missing, "dropoff.name")
	}
	if dropoff.Address == "" {
		missing = append(missing, "dropoff.address")
	}
	if dropoff.Phone == "" {
		missing = append(missing, "dropoff.phone")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "dropoff contact is incomplete").
			WithDetails(map[string]any{"missing": missing})
	}
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	for _, item := range items {
		if strings.TrimSpace(item.Name) == "" || item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "items need a name and a positive quantity")
		}
	}
	return nil
}

func failureMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}
