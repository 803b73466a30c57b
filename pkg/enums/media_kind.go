package enums

import (
	"fmt"
	"strings"
)

// MediaKind defines where an uploaded image is used.
type MediaKind string

const (
	MediaKindRestaurant MediaKind = "restaurant"
	MediaKindMenuItem   MediaKind = "menu_item"
)

var validMediaKinds = []MediaKind{
	MediaKindRestaurant,
	MediaKindMenuItem,
}

// String returns the literal string for the kind.
func (m MediaKind) String() string {
	return string(m)
}

// IsValid reports whether the kind is known.
func (m MediaKind) IsValid() bool {
	for _, candidate := range validMediaKinds {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMediaKind converts raw input into a MediaKind.
func ParseMediaKind(value string) (MediaKind, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validMediaKinds {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid media kind %q", value)
}
