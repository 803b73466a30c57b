package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/forkline/storefront/internal/cart"
	"github.com/forkline/storefront/pkg/db"
	"github.com/forkline/storefront/pkg/db/models"
	pkgerrors "github.com/forkline/storefront/pkg/errors"
)

type menuRepository interface {
	Create(ctx context.Context, item *models.MenuItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID, availableOnly bool) ([]models.MenuItem, error)
	Update(ctx context.Context, item *models.MenuItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	RestaurantExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service exposes menu reads for shoppers, catalog lookups for the cart and
// admin mutations.
type Service interface {
	ListForRestaurant(ctx context.Context, restaurantID uuid.UUID, availableOnly bool) ([]MenuItemDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*MenuItemDTO, error)
	Create(ctx context.Context, restaurantID uuid.UUID, input CreateMenuItemInput) (*MenuItemDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateMenuItemInput) (*MenuItemDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CatalogItem(ctx context.Context, menuItemID string) (cart.CatalogItem, error)
}

type service struct {
	repo menuRepository
}

// NewService builds a menu service over the provided repository.
func NewService(repo menuRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("menu repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListForRestaurant(ctx context.Context, restaurantID uuid.UUID, availableOnly bool) ([]MenuItemDTO, error) {
	if err := s.ensureRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByRestaurant(ctx, restaurantID, availableOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list menu items")
	}
	out := make([]MenuItemDTO, 0, len(items))
	for i := range items {
		out = append(out, FromModel(&items[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*MenuItemDTO, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(item)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, restaurantID uuid.UUID, input CreateMenuItemInput) (*MenuItemDTO, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}
	if err := s.ensureRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}

	item := input.toModel(restaurantID)
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create menu item")
	}
	dto := FromModel(item)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateMenuItemInput) (*MenuItemDTO, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
	}
	if input.Price != nil && input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}

	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	applyUpdate(item, input)
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update menu item")
	}
	dto := FromModel(item)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete menu item")
	}
	return nil
}

// CatalogItem resolves an orderable menu item for the cart.
func (s *service) CatalogItem(ctx context.Context, menuItemID string) (cart.CatalogItem, error) {
	id, err := uuid.Parse(strings.TrimSpace(menuItemID))
	if err != nil {
		return cart.CatalogItem{}, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	item, err := s.find(ctx, id)
	if err != nil {
		return cart.CatalogItem{}, err
	}
	if !item.IsAvailable {
		return cart.CatalogItem{}, pkgerrors.New(pkgerrors.CodeConflict, "menu item is unavailable").
			WithDetails(map[string]any{"menu_item_id": item.ID.String()})
	}
	return cart.CatalogItem{
		ID:           item.ID.String(),
		Name:         item.Name,
		Price:        item.Price,
		Image:        item.ImageURL,
		RestaurantID: item.RestaurantID.String(),
	}, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu item")
	}
	return item, nil
}

func (s *service) ensureRestaurant(ctx context.Context, id uuid.UUID) error {
	exists, err := s.repo.RestaurantExists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load restaurant")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
	}
	return nil
}
