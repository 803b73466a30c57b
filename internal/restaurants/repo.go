package restaurants

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forkline/storefront/pkg/db/models"
	"github.com/forkline/storefront/pkg/pagination"
)

// Repository handles restaurant persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to restaurant operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, restaurant *models.Restaurant) error {
	if restaurant == nil {
		return fmt.Errorf("restaurant is required")
	}
	return r.db.WithContext(ctx).Create(restaurant).Error
}

// FindByID loads a restaurant by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&restaurant).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// FindBySlug loads a restaurant by its public slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&restaurant).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// List returns one page ordered by name then id, plus one buffered row.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.Restaurant, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.Restaurant{})
	if cursor != nil {
		query = query.Where("(name > ?) OR (name = ? AND id > ?)", cursor.Key, cursor.Key, cursor.ID)
	}

	var rows []models.Restaurant
	if err := query.
		Order("name ASC").
		Order("id ASC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAll returns every restaurant; the status worker evaluates all of them.
func (r *Repository) ListAll(ctx context.Context) ([]models.Restaurant, error) {
	var rows []models.Restaurant
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update saves the provided restaurant.
func (r *Repository) Update(ctx context.Context, restaurant *models.Restaurant) error {
	if restaurant == nil {
		return fmt.Errorf("restaurant is required")
	}
	return r.db.WithContext(ctx).Save(restaurant).Error
}

// Delete removes a restaurant and its menu in one transaction.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("restaurant_id = ?", id).Delete(&models.MenuItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Restaurant{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
