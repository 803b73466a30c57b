package menu

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forkline/storefront/pkg/db/models"
)

// Repository handles menu item persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to menu item operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, item *models.MenuItem) error {
	if item == nil {
		return fmt.Errorf("menu item is required")
	}
	return r.db.WithContext(ctx).Create(item).Error
}

// FindByID loads a menu item by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByRestaurant returns the restaurant's items in display order.
func (r *Repository) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID, availableOnly bool) ([]models.MenuItem, error) {
	query := r.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID)
	if availableOnly {
		query = query.Where("is_available = ?", true)
	}
	var items []models.MenuItem
	if err := query.Order("position ASC").Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Update saves the provided menu item.
func (r *Repository) Update(ctx context.Context, item *models.MenuItem) error {
	if item == nil {
		return fmt.Errorf("menu item is required")
	}
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete removes a menu item, returning gorm.ErrRecordNotFound when absent.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.MenuItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RestaurantExists reports whether a restaurant row with id exists.
func (r *Repository) RestaurantExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Restaurant{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
