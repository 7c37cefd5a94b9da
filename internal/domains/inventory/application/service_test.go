package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/campus-canteen/internal/domains/inventory/adapters/memory"
	"github.com/Apurer/campus-canteen/internal/domains/inventory/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/inventory/domain"
	"github.com/Apurer/campus-canteen/internal/domains/inventory/ports"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

var (
	admin   = auth.Principal{UserID: 1, Role: auth.RoleAdmin}
	staff   = auth.Principal{UserID: 2, Role: auth.RoleStaff}
	student = auth.Principal{UserID: 3, Role: auth.RoleStudent}
	fixedAt = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
)

func ptr[T any](v T) *T { return &v }

func newService() *Service {
	return NewService(memory.NewRepository(), WithClock(func() time.Time { return fixedAt }))
}

func createItem(t *testing.T, svc *Service, name, category string, stock float64) *domain.Item {
	t.Helper()
	item, err := svc.CreateItem(context.Background(), staff, types.ItemInput{
		Ingredient:      ptr(name),
		Unit:            ptr("kg"),
		Category:        ptr(category),
		CurrentStock:    ptr(stock),
		MaximumCapacity: ptr(100.0),
		CostPerUnit:     ptr(decimal.NewFromInt(200)),
	})
	require.NoError(t, err)
	return item
}

func TestCreateItem(t *testing.T) {
	svc := newService()
	item := createItem(t, svc, "Onions", "vegetables", 12)
	require.Equal(t, domain.CategoryVegetables, item.Category)
	require.Equal(t, fixedAt, item.LastRestocked)

	_, err := svc.CreateItem(context.Background(), staff, types.ItemInput{Ingredient: ptr("Salt")})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateItem(context.Background(), staff, types.ItemInput{
		Ingredient: ptr("onions"), Unit: ptr("kg"), Category: ptr("Vegetables"),
		CurrentStock: ptr(1.0), MaximumCapacity: ptr(5.0), CostPerUnit: ptr(decimal.NewFromInt(1)),
	})
	require.ErrorIs(t, err, ports.ErrDuplicateIngredient)
}

func TestCustomersAreDenied(t *testing.T) {
	svc := newService()
	_, err := svc.ListItems(context.Background(), student, types.ListItemsInput{})
	require.ErrorIs(t, err, auth.ErrAccessDenied)
	_, err = svc.ListItems(context.Background(), auth.Principal{}, types.ListItemsInput{})
	require.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestDeleteIsAdminOnly(t *testing.T) {
	svc := newService()
	item := createItem(t, svc, "Onions", "Vegetables", 12)
	require.ErrorIs(t, svc.DeleteItem(context.Background(), staff, item.ID), auth.ErrAccessDenied)
	require.NoError(t, svc.DeleteItem(context.Background(), admin, item.ID))
	_, err := svc.GetItem(context.Background(), admin, item.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestAdjustStock(t *testing.T) {
	svc := newService()
	item := createItem(t, svc, "Onions", "Vegetables", 12)
	ctx := context.Background()

	updated, err := svc.AdjustStock(ctx, staff, types.AdjustStockInput{ID: item.ID, Operation: "subtract", Quantity: 10})
	require.NoError(t, err)
	require.Equal(t, float64(2), updated.CurrentStock)

	_, err = svc.AdjustStock(ctx, staff, types.AdjustStockInput{ID: item.ID, Operation: "subtract", Quantity: 3})
	require.ErrorIs(t, err, ErrInsufficientStock)

	_, err = svc.AdjustStock(ctx, staff, types.AdjustStockInput{ID: item.ID, Operation: "divide", Quantity: 3})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AdjustStock(ctx, staff, types.AdjustStockInput{ID: 404, Operation: "add", Quantity: 3})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestLowStockAndCategories(t *testing.T) {
	svc := newService()
	createItem(t, svc, "Onions", "Vegetables", 4)
	createItem(t, svc, "Chicken", "Meat", 1)
	createItem(t, svc, "Rice", "Grains", 50)
	ctx := context.Background()

	low, err := svc.LowStock(ctx, staff)
	require.NoError(t, err)
	require.Len(t, low, 2)
	require.Equal(t, "Chicken", low[0].Ingredient)

	flagged, err := svc.ListItems(ctx, staff, types.ListItemsInput{LowStock: true})
	require.NoError(t, err)
	require.Equal(t, "Chicken", flagged[0].Ingredient)
	require.Equal(t, "Onions", flagged[1].Ingredient)

	categories, err := svc.Categories(ctx, staff)
	require.NoError(t, err)
	require.Equal(t, []domain.Category{domain.CategoryVegetables, domain.CategoryMeat, domain.CategoryGrains}, categories)
}

func TestWastageFlow(t *testing.T) {
	svc := newService()
	item := createItem(t, svc, "Milk", "Dairy", 10)
	ctx := context.Background()

	updated, err := svc.RecordWastage(ctx, staff, types.WastageInput{ID: item.ID, Quantity: 3, Reason: "expired"})
	require.NoError(t, err)
	require.Equal(t, float64(7), updated.CurrentStock)

	_, err = svc.RecordWastage(ctx, staff, types.WastageInput{ID: item.ID, Quantity: 30, Reason: "spoiled"})
	require.ErrorIs(t, err, ErrInsufficientStock)

	report, err := svc.WastageReport(ctx, staff, types.WastageReportInput{StartDate: "2025-06-02", EndDate: "2025-06-02"})
	require.NoError(t, err)
	require.Len(t, report.Items, 1)
	require.True(t, decimal.NewFromInt(600).Equal(report.TotalCost))

	empty, err := svc.WastageReport(ctx, staff, types.WastageReportInput{StartDate: "2025-06-03", EndDate: "2025-06-04"})
	require.NoError(t, err)
	require.Empty(t, empty.Items)

	_, err = svc.WastageReport(ctx, staff, types.WastageReportInput{StartDate: "June", EndDate: "2025-06-04"})
	require.ErrorIs(t, err, ErrInvalidInput)
}
