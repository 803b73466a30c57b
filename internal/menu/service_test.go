package menu

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/forkline/storefront/pkg/db/dbtest"
	"github.com/forkline/storefront/pkg/db/models"
	pkgerrors "github.com/forkline/storefront/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc, conn
}

func seedRestaurant(t *testing.T, conn *gorm.DB) uuid.UUID {
	t.Helper()
	r := &models.Restaurant{Slug: "slug-" + uuid.NewString()[:8], Name: "Luigi's", Address: "1 Main St", ManualOpen: true, TimeZone: "UTC"}
	require.NoError(t, conn.Create(r).Error)
	return r.ID
}

func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func TestNewServiceRequiresRepo(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}

func TestCreateAndListMenu(t *testing.T) {
	ctx := context.Background()
	svc, conn := newTestService(t)
	restaurantID := seedRestaurant(t, conn)

	_, err := svc.Create(ctx, restaurantID, CreateMenuItemInput{Name: "Tiramisu", Price: decimal.RequireFromString("6.50"), Position: 2})
	require.NoError(t, err)
	_, err = svc.Create(ctx, restaurantID, CreateMenuItemInput{Name: " Margherita ", Price: decimal.RequireFromString("11.00"), Position: 1, Category: strPtr("  ")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, restaurantID, CreateMenuItemInput{Name: "Seasonal Soup", Price: decimal.RequireFromString("5"), Position: 3, IsAvailable: boolPtr(false)})
	require.NoError(t, err)

	all, err := svc.ListForRestaurant(ctx, restaurantID, false)
	require.NoError(t, err)
	require.Len(t, all, 3)

	available, err := svc.ListForRestaurant(ctx, restaurantID, true)
	require.NoError(t, err)
	require.Len(t, available, 2)
	assert.Equal(t, "Margherita", available[0].Name)
	assert.Nil(t, available[0].Category)
	assert.True(t, available[0].Price.Equal(decimal.RequireFromString("11")))
	assert.Equal(t, "Tiramisu", available[1].Name)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, conn := newTestService(t)
	restaurantID := seedRestaurant(t, conn)

	_, err := svc.Create(ctx, restaurantID, CreateMenuItemInput{Name: "  ", Price: decimal.NewFromInt(1)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(ctx, restaurantID, CreateMenuItemInput{Name: "Soup", Price: decimal.NewFromInt(-1)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(ctx, uuid.New(), CreateMenuItemInput{Name: "Soup", Price: decimal.NewFromInt(1)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.ListForRestaurant(ctx, uuid.New(), true)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, conn := newTestService(t)
	restaurantID := seedRestaurant(t, conn)

	created, err := svc.Create(ctx, restaurantID, CreateMenuItemInput{Name: "Ramen", Price: decimal.RequireFromString("13.00")})
	require.NoError(t, err)

	price := decimal.RequireFromString("14.25")
	updated, err := svc.Update(ctx, created.ID, UpdateMenuItemInput{Price: &price, IsAvailable: boolPtr(false)})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(price))
	assert.False(t, updated.IsAvailable)
	assert.Equal(t, "Ramen", updated.Name)

	_, err = svc.Update(ctx, created.ID, UpdateMenuItemInput{Name: strPtr(" ")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Update(ctx, uuid.New(), UpdateMenuItemInput{Price: &price})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, svc.Delete(ctx, created.ID))
	err = svc.Delete(ctx, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Get(ctx, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCatalogItem(t *testing.T) {
	ctx := context.Background()
	svc, conn := newTestService(t)
	restaurantID := seedRestaurant(t, conn)

	created, err := svc.Create(ctx, restaurantID, CreateMenuItemInput{Name: "Pad Thai", Price: decimal.RequireFromString("12.00"), ImageURL: strPtr("https://cdn.example.com/pad-thai.jpg")})
	require.NoError(t, err)

	item, err := svc.CatalogItem(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID.String(), item.ID)
	assert.Equal(t, restaurantID.String(), item.RestaurantID)
	assert.Equal(t, "Pad Thai", item.Name)
	require.NotNil(t, item.Image)
	assert.Equal(t, "https://cdn.example.com/pad-thai.jpg", *item.Image)

	_, err = svc.CatalogItem(ctx, "not-a-uuid")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Update(ctx, created.ID, UpdateMenuItemInput{IsAvailable: boolPtr(false)})
	require.NoError(t, err)
	_, err = svc.CatalogItem(ctx, created.ID.String())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}
