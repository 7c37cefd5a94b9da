//go:build integration
// +build integration

package postgres

import (
	"context"
	"errors"
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

	catalogpostgres "github.com/Apurer/campus-canteen/internal/domains/catalog/adapters/persistence/postgres"
	catalogdomain "github.com/Apurer/campus-canteen/internal/domains/catalog/domain"
	"github.com/Apurer/campus-canteen/internal/domains/orders/application"
	"github.com/Apurer/campus-canteen/internal/domains/orders/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/orders/domain"
	"github.com/Apurer/campus-canteen/internal/domains/orders/ports"
	"github.com/Apurer/campus-canteen/internal/platform/migrations"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

func setupOrdersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
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

type recordingListener struct {
	mu  sync.Mutex
	ids []int64
}

func (l *recordingListener) Invalidate(_ context.Context, ids ...int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids = append(l.ids, ids...)
}

func seedMenuItem(t *testing.T, db *gorm.DB, name string, price int64, remaining int32) *catalogdomain.MenuItem {
	t.Helper()
	item, err := catalogdomain.NewMenuItem(name, decimal.NewFromInt(price), catalogdomain.CategoryMainCourse)
	require.NoError(t, err)
	item.RemainingQuantity = remaining
	saved, err := catalogpostgres.NewRepository(db).Save(context.Background(), item)
	require.NoError(t, err)
	return saved
}

func newService(db *gorm.DB, listener ports.StockListener) *application.Service {
	return application.NewService(
		NewUnitOfWork(db, listener),
		NewRepository(db),
		catalogpostgres.NewRepository(db),
	)
}

func TestUnitOfWork_PlaceOrderCommits(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	item := seedMenuItem(t, db, "Rice and Curry", 500, 5)
	listener := &recordingListener{}
	svc := newService(db, listener)
	customer := auth.Principal{UserID: 10, Role: auth.RoleStudent}

	view, err := svc.PlaceOrder(context.Background(), customer, types.PlaceOrderInput{
		Type:  "takeaway",
		Items: []types.OrderLineInput{{MenuItemID: item.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD000001", view.Order.OrderNumber)
	assert.Equal(t, "QRORD000001", view.Order.PickupCode)
	assert.True(t, decimal.NewFromInt(1000).Equal(view.Order.TotalAmount))
	assert.Equal(t, []int64{item.ID}, listener.ids)

	stored, err := catalogpostgres.NewRepository(db).GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(3), stored.RemainingQuantity)

	reloaded, err := NewRepository(db).GetByID(context.Background(), view.Order.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, "Rice and Curry", reloaded.Items[0].Name)
	assert.True(t, decimal.NewFromInt(500).Equal(reloaded.Items[0].UnitPrice))
}

func TestUnitOfWork_ConcurrentPlacementNeverOversells(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	item := seedMenuItem(t, db, "Kottu", 300, 5)
	svc := newService(db, nil)

	var wg sync.WaitGroup
	errs := make([]error, 12)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			caller := auth.Principal{UserID: int64(100 + i), Role: auth.RoleStudent}
			_, errs[i] = svc.PlaceOrder(context.Background(), caller, types.PlaceOrderInput{
				Items: []types.OrderLineInput{{MenuItemID: item.ID, Quantity: 1}},
			})
		}(i)
	}
	wg.Wait()

	var placed int
	for _, err := range errs {
		if err == nil {
			placed++
			continue
		}
		assert.ErrorIs(t, err, application.ErrInsufficientQuantity)
	}
	assert.Equal(t, 5, placed)

	stored, err := catalogpostgres.NewRepository(db).GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.RemainingQuantity)

	_, total, err := NewRepository(db).List(context.Background(), ports.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
}

func TestUnitOfWork_RollbackLeavesStockAndNoOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	item := seedMenuItem(t, db, "Hoppers", 60, 10)
	listener := &recordingListener{}
	uow := NewUnitOfWork(db, listener)
	boom := errors.New("kitchen offline")

	err := uow.Do(context.Background(), func(ctx context.Context, stores ports.Stores) error {
		if _, err := stores.Menu.Reserve(ctx, item.ID, 4); err != nil {
			return err
		}
		now := time.Now()
		order, err := domain.NewOrder(domain.Draft{
			CustomerID:    3,
			Type:          domain.TypeDineIn,
			PaymentMethod: domain.PaymentCash,
			Lines:         []domain.DraftLine{{MenuItemID: item.ID, Quantity: 4}},
		}, []domain.LineItem{{MenuItemID: item.ID, Name: "Hoppers", Quantity: 4, UnitPrice: decimal.NewFromInt(60)}}, 1, now, now)
		if err != nil {
			return err
		}
		if _, err := stores.Orders.Save(ctx, order); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, listener.ids)

	stored, err := catalogpostgres.NewRepository(db).GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(10), stored.RemainingQuantity)

	_, total, err := NewRepository(db).List(context.Background(), ports.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRepository_ListFiltersAndSequence(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		seq, err := repo.NextOrderNumber(ctx)
		require.NoError(t, err)
		draft := domain.Draft{
			CustomerID:    int64(10 + i%2),
			Type:          domain.TypeDineIn,
			PaymentMethod: domain.PaymentCash,
			Lines:         []domain.DraftLine{{MenuItemID: 1, Quantity: 1}},
		}
		order, err := domain.NewOrder(draft, []domain.LineItem{{MenuItemID: 1, Name: "Tea", Quantity: 1, UnitPrice: decimal.NewFromInt(50)}}, seq, base, base)
		require.NoError(t, err)
		order.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		_, err = repo.Save(ctx, order)
		require.NoError(t, err)
	}

	page, total, err := repo.List(ctx, ports.ListFilter{CustomerID: 10, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, page, 1)
	assert.Equal(t, base.Add(2*time.Hour), page[0].CreatedAt.UTC())

	from := base.Add(time.Hour)
	to := base.Add(3 * time.Hour)
	window, err := repo.ListCreatedBetween(ctx, &from, &to)
	require.NoError(t, err)
	assert.Len(t, window, 2)

	first, err := repo.NextOrderNumber(ctx)
	require.NoError(t, err)
	second, err := repo.NextOrderNumber(ctx)
	require.NoError(t, err)
	assert.Greater(t, second, first)

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
