//go:build integration
// +build integration

package postgres

import (
	"context"
	"sync"
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

	"github.com/Apurer/campus-canteen/internal/domains/inventory/domain"
	"github.com/Apurer/campus-canteen/internal/domains/inventory/ports"
	"github.com/Apurer/campus-canteen/internal/platform/migrations"
)

func setupInventoryPostgresContainer(t *testing.T) (*gorm.DB, func()) {
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

func newItem(t *testing.T, name string, category domain.Category, stock float64) *domain.Item {
	t.Helper()
	item, err := domain.NewItem(name, domain.UnitKilograms, category, stock, 100, decimal.NewFromInt(250), time.Now().UTC())
	require.NoError(t, err)
	item.Supplier = domain.Supplier{Name: "Keells", Contact: "0112345678"}
	return item
}

func TestRepository_SaveListAndCategories(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupInventoryPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	onions, err := repo.Save(ctx, newItem(t, "Onions", domain.CategoryVegetables, 3))
	require.NoError(t, err)
	assert.Equal(t, "Keells", onions.Supplier.Name)
	_, err = repo.Save(ctx, newItem(t, "Chicken", domain.CategoryMeat, 1))
	require.NoError(t, err)
	_, err = repo.Save(ctx, newItem(t, "Rice", domain.CategoryGrains, 40))
	require.NoError(t, err)

	_, err = repo.Save(ctx, newItem(t, "Onions", domain.CategoryVegetables, 1))
	assert.ErrorIs(t, err, ports.ErrDuplicateIngredient)

	all, err := repo.List(ctx, ports.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Chicken", all[0].Ingredient)

	low, err := repo.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Chicken", low[0].Ingredient)

	categories, err := repo.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{domain.CategoryVegetables, domain.CategoryMeat, domain.CategoryGrains}, categories)
}

func TestRepository_UpdateSerializesWastage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupInventoryPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	saved, err := repo.Save(ctx, newItem(t, "Milk", domain.CategoryDairy, 10))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 15)
	for i := 0; i < 15; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Update(ctx, saved.ID, func(item *domain.Item) error {
				return item.RecordWastage(domain.WastageEntry{Quantity: 1, Reason: domain.ReasonSpoiled}, time.Now())
			})
		}(i)
	}
	wg.Wait()

	var failed int
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrWastageExceedsStock)
			failed++
		}
	}
	assert.Equal(t, 5, failed)

	reloaded, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Zero(t, reloaded.CurrentStock)
	assert.Len(t, reloaded.Wastage, 10)

	_, err = repo.Update(ctx, saved.ID+99, func(*domain.Item) error { return nil })
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
