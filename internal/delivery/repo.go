package delivery

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/forkline/storefront/pkg/db/models"
	"github.com/forkline/storefront/pkg/pagination"
)

// Repository persists the delivery audit log.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to audit operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Record(ctx context.Context, entry *models.DeliveryRequest) error {
	if entry == nil {
		return fmt.Errorf("delivery request is required")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// List returns audit rows newest first, plus one buffered row. Cursor keys
// carry created_at in RFC3339Nano.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.DeliveryRequest, error) {
	cursor, at, err := parseRequestCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.DeliveryRequest{})
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", at, at, cursor.ID)
	}

	var rows []models.DeliveryRequest
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func requestCursor(m models.DeliveryRequest) pagination.Cursor {
	return pagination.Cursor{Key: m.CreatedAt.UTC().Format(time.RFC3339Nano), ID: m.ID}
}

func parseRequestCursor(value string) (*pagination.Cursor, time.Time, error) {
	cursor, err := pagination.ParseCursor(value)
	if err != nil || cursor == nil {
		return cursor, time.Time{}, err
	}
	at, err := time.Parse(time.RFC3339Nano, cursor.Key)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("invalid cursor time: %w", err)
	}
	return cursor, at.UTC(), nil
}
