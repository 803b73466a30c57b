package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/forkline/storefront/pkg/logger"
)

const maxLocationLength = 512

// LocationStore holds the delivery address of one session as a JSON string.
type LocationStore struct {
	storage Storage
	logg    *logger.Logger
}

func NewLocationStore(storage Storage, logg *logger.Logger) (*LocationStore, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &LocationStore{storage: storage, logg: logg}, nil
}

// Get returns the stored address. Missing, empty or malformed content reads as
// absent; malformed content is also reset.
func (l *LocationStore) Get(ctx context.Context) (string, bool, error) {
	raw, ok, err := l.storage.Get(ctx, LocationKey)
	if err != nil || !ok {
		return "", false, err
	}
	var address string
	if err := json.Unmarshal([]byte(raw), &address); err != nil || strings.TrimSpace(address) == "" {
		l.logg.Warn(ctx, "cart.stored_location_discarded")
		if delErr := l.storage.Delete(ctx, LocationKey); delErr != nil {
			l.logg.Error(ctx, "cart.location_reset_failed", delErr)
		}
		return "", false, nil
	}
	return address, true, nil
}

// Set stores a trimmed, non-empty address.
func (l *LocationStore) Set(ctx context.Context, address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return fmt.Errorf("address required")
	}
	if len(address) > maxLocationLength {
		return fmt.Errorf("address exceeds %d characters", maxLocationLength)
	}
	buf, err := json.Marshal(address)
	if err != nil {
		return err
	}
	return l.storage.Set(ctx, LocationKey, string(buf))
}

func (l *LocationStore) Clear(ctx context.Context) error {
	return l.storage.Delete(ctx, LocationKey)
}
