package enums

import (
	"fmt"
	"strings"
)

// DeliveryProvider names a third-party dispatch service.
type DeliveryProvider string

const (
	DeliveryProviderDoorDash DeliveryProvider = "doordash"
	DeliveryProviderUber     DeliveryProvider = "uber"
)

var validDeliveryProviders = []DeliveryProvider{
	DeliveryProviderDoorDash,
	DeliveryProviderUber,
}

// String returns the literal string for the provider.
func (p DeliveryProvider) String() string {
	return string(p)
}

// IsValid reports whether the provider is known.
func (p DeliveryProvider) IsValid() bool {
	for _, candidate := range validDeliveryProviders {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseDeliveryProvider converts raw input into a DeliveryProvider.
func ParseDeliveryProvider(value string) (DeliveryProvider, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validDeliveryProviders {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery provider %q", value)
}

// DeliveryRequestKind distinguishes audit rows.
type DeliveryRequestKind string

const (
	DeliveryRequestQuote    DeliveryRequestKind = "quote"
	DeliveryRequestDispatch DeliveryRequestKind = "dispatch"
	DeliveryRequestLookup   DeliveryRequestKind = "lookup"
)
