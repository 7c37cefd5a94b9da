//go:build integration
// +build integration

package postgres

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/campus-canteen/internal/domains/catalog/domain"
	"github.com/Apurer/campus-canteen/internal/domains/catalog/ports"
	"github.com/Apurer/campus-canteen/internal/platform/migrations"
)

func setupPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("canteen_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

func newItem(t *testing.T, name string, remaining int32, tags ...domain.DietaryTag) *domain.MenuItem {
	t.Helper()
	item, err := domain.NewMenuItem(name, decimal.RequireFromString("250.00"), domain.CategoryMainCourse)
	require.NoError(t, err)
	item.RemainingQuantity = remaining
	item.DietaryTags = tags
	return item
}

func TestPostgresRepository_SaveGetDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	saved, err := repo.Save(ctx, newItem(t, "Rice and Curry", 40, domain.TagHalal))
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.True(t, saved.Price.Equal(decimal.RequireFromString("250")))
	assert.Equal(t, []domain.DietaryTag{domain.TagHalal}, saved.DietaryTags)

	saved.Name = "Rice and Curry (Chicken)"
	updated, err := repo.Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, "Rice and Curry (Chicken)", updated.Name)

	require.NoError(t, repo.Delete(ctx, saved.ID))
	_, err = repo.GetByID(ctx, saved.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, saved.ID), ports.ErrNotFound)
}

func TestPostgresRepository_ListByDietaryTags(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Save(ctx, newItem(t, "Dhal Curry", 10, domain.TagVegan, domain.TagVegetarian))
	require.NoError(t, err)
	_, err = repo.Save(ctx, newItem(t, "Chicken Kottu", 10, domain.TagHalal, domain.TagSpicy))
	require.NoError(t, err)

	vegan, err := repo.List(ctx, ports.ListFilter{DietaryTags: []domain.DietaryTag{domain.TagVegan}})
	require.NoError(t, err)
	require.Len(t, vegan, 1)
	assert.Equal(t, "Dhal Curry", vegan[0].Name)

	all, err := repo.List(ctx, ports.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPostgresRepository_ReserveIsAtomic(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	item, err := repo.Save(ctx, newItem(t, "String Hoppers", 5))
	require.NoError(t, err)

	var succeeded atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Reserve(ctx, item.ID, 1); err == nil {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), succeeded.Load())
	stored, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(0), stored.RemainingQuantity)
	assert.Equal(t, int64(5), stored.Popularity)

	_, err = repo.Reserve(ctx, item.ID, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientQuantity)
	assert.Contains(t, err.Error(), "Available: 0")
}

func TestPostgresRepository_ReleaseAndReset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	item, err := repo.Save(ctx, newItem(t, "Milk Tea", 3))
	require.NoError(t, err)

	released, err := repo.Release(ctx, item.ID, 1000)
	require.NoError(t, err)
	assert.Equal(t, item.DailyQuantity, released.RemainingQuantity)

	_, err = repo.Reserve(ctx, item.ID, 10)
	require.NoError(t, err)
	changed, err := repo.ResetRemaining(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	_, err = repo.Release(ctx, 424242, 1)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPostgresRepository_StaffEditsLeaveStockAlone(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	item, err := repo.Save(ctx, newItem(t, "Kottu", 10))
	require.NoError(t, err)
	stale, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)

	_, err = repo.Reserve(ctx, item.ID, 4)
	require.NoError(t, err)

	stale.ToggleAvailability()
	saved, err := repo.Save(ctx, stale)
	require.NoError(t, err)
	assert.False(t, saved.Available)
	assert.Equal(t, int32(6), saved.RemainingQuantity)
	assert.Equal(t, int64(4), saved.Popularity)

	clamped, err := repo.SetQuantities(ctx, item.ID, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(5), clamped.DailyQuantity)
	assert.Equal(t, int32(5), clamped.RemainingQuantity)

	remaining := int32(2)
	explicit, err := repo.SetQuantities(ctx, item.ID, 8, &remaining)
	require.NoError(t, err)
	assert.Equal(t, int32(2), explicit.RemainingQuantity)

	_, err = repo.SetQuantities(ctx, 424242, 5, nil)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
