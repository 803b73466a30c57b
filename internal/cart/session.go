package cart

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/forkline/storefront/pkg/errors"
	"github.com/forkline/storefront/pkg/logger"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)

// ValidSessionID reports whether id can name a cart session.
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// CatalogLookup resolves a menu item for AddItem.
type CatalogLookup interface {
	CatalogItem(ctx context.Context, menuItemID string) (CatalogItem, error)
}

// OrderingGate reports whether a restaurant currently accepts new items.
type OrderingGate interface {
	AcceptingOrders(ctx context.Context, restaurantID string) (bool, error)
}

// StorageFactory builds the storage scoped to one session.
type StorageFactory func(sessionID string) (Storage, error)

// Snapshot is the read model returned after every session operation.
type Snapshot struct {
	SessionID string          `json:"session_id"`
	Lines     []Line          `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// AddItemInput is the payload for adding a catalog item to a session cart.
type AddItemInput struct {
	MenuItemID     string
	Quantity       int
	RestaurantName *string
	PriceOverride  *decimal.Decimal
}

// SessionService binds cart sessions to stores for the HTTP layer.
type SessionService interface {
	Get(ctx context.Context, sessionID string) (Snapshot, error)
	AddItem(ctx context.Context, sessionID string, input AddItemInput) (Snapshot, error)
	UpdateQuantity(ctx context.Context, sessionID, lineID string, quantity int) (Snapshot, error)
	RemoveItem(ctx context.Context, sessionID, lineID string) (Snapshot, error)
	Clear(ctx context.Context, sessionID string) (Snapshot, error)
	GetLocation(ctx context.Context, sessionID string) (string, bool, error)
	SetLocation(ctx context.Context, sessionID, address string) error
}

// SessionParams configure the session service.
type SessionParams struct {
	Storage StorageFactory
	Catalog CatalogLookup
	Images  ImageResolver
	Gate    OrderingGate
	Logger  *logger.Logger
}

type sessionService struct {
	storage StorageFactory
	catalog CatalogLookup
	images  ImageResolver
	gate    OrderingGate
	logg    *logger.Logger
	locks   *sessionLocks
}

func NewSessionService(params SessionParams) (SessionService, error) {
	if params.Storage == nil {
		return nil, fmt.Errorf("storage factory required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog lookup required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &sessionService{
		storage: params.Storage,
		catalog: params.Catalog,
		images:  params.Images,
		gate:    params.Gate,
		logg:    params.Logger,
		locks:   newSessionLocks(),
	}, nil
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (Snapshot, error) {
	return s.run(ctx, sessionID, func(context.Context, *Store) error { return nil })
}

func (s *sessionService) AddItem(ctx context.Context, sessionID string, input AddItemInput) (Snapshot, error) {
	if input.MenuItemID == "" {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "menu_item_id is required")
	}
	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if quantity > MaxLineQuantity {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be at most %d", MaxLineQuantity))
	}
	if input.PriceOverride != nil && input.PriceOverride.IsNegative() {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "price_override must be non-negative")
	}

	item, err := s.catalog.CatalogItem(ctx, input.MenuItemID)
	if err != nil {
		return Snapshot{}, err
	}
	if s.gate != nil {
		accepting, err := s.gate.AcceptingOrders(ctx, item.RestaurantID)
		if err != nil {
			return Snapshot{}, err
		}
		if !accepting {
			return Snapshot{}, pkgerrors.New(pkgerrors.CodeClosed, "restaurant is closed").
				WithDetails(map[string]any{"restaurant_id": item.RestaurantID})
		}
	}

	return s.run(ctx, sessionID, func(ctx context.Context, store *Store) error {
		line := store.AddItem(ctx, item, input.RestaurantName, input.PriceOverride)
		if quantity > 1 {
			target := line.Quantity + quantity - 1
			if target > MaxLineQuantity {
				target = MaxLineQuantity
			}
			store.UpdateQuantity(ctx, line.LineID, target)
		}
		return nil
	})
}

func (s *sessionService) UpdateQuantity(ctx context.Context, sessionID, lineID string, quantity int) (Snapshot, error) {
	return s.run(ctx, sessionID, func(ctx context.Context, store *Store) error {
		store.UpdateQuantity(ctx, lineID, quantity)
		return nil
	})
}

func (s *sessionService) RemoveItem(ctx context.Context, sessionID, lineID string) (Snapshot, error) {
	return s.run(ctx, sessionID, func(ctx context.Context, store *Store) error {
		store.RemoveItem(ctx, lineID)
		return nil
	})
}

func (s *sessionService) Clear(ctx context.Context, sessionID string) (Snapshot, error) {
	return s.run(ctx, sessionID, func(ctx context.Context, store *Store) error {
		store.Clear(ctx)
		return nil
	})
}

func (s *sessionService) GetLocation(ctx context.Context, sessionID string) (string, bool, error) {
	locations, err := s.locationStore(sessionID)
	if err != nil {
		return "", false, err
	}
	address, ok, err := locations.Get(s.logg.WithSessionID(ctx, sessionID))
	if err != nil {
		return "", false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading delivery location")
	}
	return address, ok, nil
}

func (s *sessionService) SetLocation(ctx context.Context, sessionID, address string) error {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "address is required")
	}
	if len(trimmed) > maxLocationLength {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("address exceeds %d characters", maxLocationLength))
	}
	locations, err := s.locationStore(sessionID)
	if err != nil {
		return err
	}
	defer s.locks.lock(sessionID)()
	if err := locations.Set(s.logg.WithSessionID(ctx, sessionID), trimmed); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving delivery location")
	}
	return nil
}

func (s *sessionService) locationStore(sessionID string) (*LocationStore, error) {
	storage, err := s.sessionStorage(sessionID)
	if err != nil {
		return nil, err
	}
	return NewLocationStore(storage, s.logg)
}

func (s *sessionService) sessionStorage(sessionID string) (Storage, error) {
	if !ValidSessionID(sessionID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart session id")
	}
	storage, err := s.storage(sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "opening cart storage")
	}
	return storage, nil
}

func (s *sessionService) run(ctx context.Context, sessionID string, op func(context.Context, *Store) error) (Snapshot, error) {
	storage, err := s.sessionStorage(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	ctx = s.logg.WithSessionID(ctx, sessionID)
	store, err := NewStore(StoreParams{Storage: storage, Logger: s.logg, Images: s.images})
	if err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building cart store")
	}

	defer s.locks.lock(sessionID)()
	store.Load(ctx)
	if err := store.LoadErr(); err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	if err := op(ctx, store); err != nil {
		return Snapshot{}, err
	}
	return snapshotOf(sessionID, store), nil
}

func snapshotOf(sessionID string, store *Store) Snapshot {
	return Snapshot{
		SessionID: sessionID,
		Lines:     store.Lines(),
		Total:     store.Total(),
		ItemCount: store.ItemCount(),
	}
}
