// Package cart holds the shopping basket of one browsing session and mirrors
// it into a durable key/value store.
package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/forkline/storefront/pkg/logger"
)

// ImageResolver looks up a display image by item name.
type ImageResolver interface {
	Resolve(name string) (string, bool)
}

// StoreParams configure a Store.
type StoreParams struct {
	Storage Storage
	Logger  *logger.Logger
	Images  ImageResolver
	NewID   func() string
}

// Store is the basket of a single owner. It is not safe for concurrent use.
type Store struct {
	storage Storage
	logg    *logger.Logger
	images  ImageResolver
	newID   func() string

	lines      []Line
	open       bool
	loadFailed error
}

func NewStore(params StoreParams) (*Store, error) {
	if params.Storage == nil {
		return nil, fmt.Errorf("storage required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	newID := params.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &Store{
		storage: params.Storage,
		logg:    params.Logger,
		images:  params.Images,
		newID:   newID,
	}, nil
}

// Load replaces the in-memory lines with the stored ones. Malformed content
// is discarded and the key is reset. When the read itself fails the store
// stays empty and refuses to write until a later Load succeeds, so the
// stored cart is never overwritten from an unknown state.
func (s *Store) Load(ctx context.Context) {
	s.lines = nil
	s.loadFailed = nil

	raw, ok, err := s.storage.Get(ctx, ItemsKey)
	if err != nil {
		s.logg.Error(ctx, "cart.load_failed", err)
		s.loadFailed = err
		return
	}
	if !ok {
		return
	}

	lines, err := decodeLines(raw)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "reason", err.Error()), "cart.stored_state_discarded")
		if delErr := s.storage.Delete(ctx, ItemsKey); delErr != nil {
			s.logg.Error(ctx, "cart.reset_failed", delErr)
		}
		return
	}
	s.lines = lines
}

// LoadErr returns the read error of the last Load, if any.
func (s *Store) LoadErr() error {
	return s.loadFailed
}

// AddItem appends item as a new line with quantity 1, or increments the line
// already holding the same menu item from the same restaurant. A merged line
// keeps its original id, price and image. Quantities stop at MaxLineQuantity.
func (s *Store) AddItem(ctx context.Context, item CatalogItem, restaurantName *string, priceOverride *decimal.Decimal) Line {
	if idx := s.indexOfItem(item.ID, item.RestaurantID); idx >= 0 {
		if s.lines[idx].Quantity < MaxLineQuantity {
			s.lines[idx].Quantity++
		}
		s.persist(ctx)
		return s.lines[idx].clone()
	}

	price := item.Price
	if priceOverride != nil && !priceOverride.IsNegative() {
		price = *priceOverride
	}
	if price.IsNegative() {
		price = decimal.Zero
	}

	line := Line{
		LineID:       s.newID(),
		MenuItemID:   item.ID,
		Name:         item.Name,
		UnitPrice:    price,
		Quantity:     1,
		RestaurantID: item.RestaurantID,
		ImageRef:     s.resolveImage(item),
	}
	if restaurantName != nil {
		name := *restaurantName
		line.RestaurantName = &name
	}

	s.lines = append(s.lines, line)
	s.persist(ctx)
	return line.clone()
}

// RemoveItem deletes the line; unknown ids are ignored.
func (s *Store) RemoveItem(ctx context.Context, lineID string) {
	idx := s.indexOfLine(lineID)
	if idx < 0 {
		return
	}
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	s.persist(ctx)
}

// UpdateQuantity sets the quantity in place. Zero or negative removes the
// line; values above MaxLineQuantity are clamped.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, lineID)
		return
	}
	if quantity > MaxLineQuantity {
		quantity = MaxLineQuantity
	}
	idx := s.indexOfLine(lineID)
	if idx < 0 {
		return
	}
	s.lines[idx].Quantity = quantity
	s.persist(ctx)
}

func (s *Store) Clear(ctx context.Context) {
	s.lines = nil
	s.persist(ctx)
}

// Total is the sum of unit price times quantity over all lines.
func (s *Store) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// ItemCount is the sum of quantities over all lines.
func (s *Store) ItemCount() int {
	count := 0
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

// Lines returns a copy of the lines in display order.
func (s *Store) Lines() []Line {
	out := make([]Line, 0, len(s.lines))
	for _, line := range s.lines {
		out = append(out, line.clone())
	}
	return out
}

// SetOpen toggles the visibility flag. It is never persisted.
func (s *Store) SetOpen(open bool) {
	s.open = open
}

func (s *Store) IsOpen() bool {
	return s.open
}

func (s *Store) indexOfLine(lineID string) int {
	for i, line := range s.lines {
		if line.LineID == lineID {
			return i
		}
	}
	return -1
}

func (s *Store) indexOfItem(menuItemID, restaurantID string) int {
	for i, line := range s.lines {
		if line.MenuItemID == menuItemID && line.RestaurantID == restaurantID {
			return i
		}
	}
	return -1
}

func (s *Store) resolveImage(item CatalogItem) *string {
	if item.Image != nil && *item.Image != "" {
		ref := *item.Image
		return &ref
	}
	if s.images == nil {
		return nil
	}
	if ref, ok := s.images.Resolve(item.Name); ok {
		return &ref
	}
	return nil
}

func (s *Store) persist(ctx context.Context) {
	if s.loadFailed != nil {
		s.logg.Warn(ctx, "cart.persist_skipped")
		return
	}
	lines := s.lines
	if lines == nil {
		lines = []Line{}
	}
	buf, err := json.Marshal(lines)
	if err != nil {
		s.logg.Error(ctx, "cart.encode_failed", err)
		return
	}
	if err := s.storage.Set(ctx, ItemsKey, string(buf)); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "lines", len(lines)), "cart.persist_failed", err)
	}
}

var errNotArray = errors.New("stored cart is not a json array")

func decodeLines(raw string) ([]Line, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errNotArray
	}
	var lines []Line
	if err := json.Unmarshal(trimmed, &lines); err != nil {
		return nil, fmt.Errorf("decoding stored cart: %w", err)
	}
	seen := make(map[string]struct{}, len(lines))
	for i, line := range lines {
		if !line.wellFormed() {
			return nil, fmt.Errorf("stored line %d is malformed", i)
		}
		if _, dup := seen[line.LineID]; dup {
			return nil, fmt.Errorf("stored line id %q is duplicated", line.LineID)
		}
		seen[line.LineID] = struct{}{}
		if line.Quantity > MaxLineQuantity {
			lines[i].Quantity = MaxLineQuantity
		}
	}
	return lines, nil
}
