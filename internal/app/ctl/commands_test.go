package ctl

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/campus-canteen/internal/app/api"
	catalogmemory "github.com/Apurer/campus-canteen/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/campus-canteen/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/campus-canteen/internal/domains/catalog/ports"
	inventorymemory "github.com/Apurer/campus-canteen/internal/domains/inventory/adapters/memory"
	ordersmemory "github.com/Apurer/campus-canteen/internal/domains/orders/adapters/memory"
	usermemory "github.com/Apurer/campus-canteen/internal/domains/users/adapters/memory"
	userdomain "github.com/Apurer/campus-canteen/internal/domains/users/domain"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

var fixedNow = time.Date(2025, 10, 18, 9, 0, 0, 0, time.UTC)

type fixture struct {
	env      *Environment
	menu     *catalogmemory.Repository
	users    *usermemory.Repository
	sessions *usermemory.SessionStore
	uploads  map[string][]byte
}

type fakeUploader struct {
	bucket  string
	uploads map[string][]byte
}

func (u fakeUploader) Upload(_ context.Context, key, _ string, body []byte) (string, error) {
	u.uploads[key] = body
	return "s3://" + u.bucket + "/" + key, nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		menu:     catalogmemory.NewRepository(),
		users:    usermemory.NewRepository(),
		sessions: usermemory.NewSessionStore(),
		uploads:  map[string][]byte{},
	}
	orders := ordersmemory.NewRepository()
	f.env = &Environment{
		Backends: &api.Backends{
			Menu:       f.menu,
			MenuStock:  f.menu,
			Orders:     orders,
			UnitOfWork: ordersmemory.NewUnitOfWork(f.menu, orders, nil),
			Users:      f.users,
			Sessions:   f.sessions,
			Inventory:  inventorymemory.NewRepository(),
		},
		NewUploader: func(_ context.Context, _, bucket string) (Uploader, error) {
			return fakeUploader{bucket: bucket, uploads: f.uploads}, nil
		},
		Now: func() time.Time { return fixedNow },
	}
	return f
}

func (f *fixture) account(t *testing.T, email string, role auth.Role) {
	t.Helper()
	user, err := userdomain.NewUser(email, "secret1", role, userdomain.Profile{FirstName: "Ops", LastName: "Team"})
	require.NoError(t, err)
	_, err = f.users.Save(context.Background(), user)
	require.NoError(t, err)
}

func (f *fixture) run(args ...string) (string, error) {
	root := NewRootCommand(func(context.Context) (*Environment, func(), error) {
		return f.env, func() {}, nil
	})
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestSeedMenuCreatesItemsInEveryCategory(t *testing.T) {
	f := newFixture(t)
	f.account(t, "admin@campus.lk", auth.RoleAdmin)

	output, err := f.run("seed-menu", "--operator", "admin@campus.lk", "--count", "4")
	require.NoError(t, err)
	require.Contains(t, output, "created #1")

	items, err := f.menu.List(context.Background(), catalogports.ListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 4)
	seen := map[catalogdomain.Category]bool{}
	for _, item := range items {
		seen[item.Category] = true
		require.Equal(t, item.DailyQuantity, item.RemainingQuantity)
		require.True(t, item.Price.GreaterThan(decimal.Zero))
	}
	require.Len(t, seen, 4)
}

func TestSeedMenuRequiresMenuRights(t *testing.T) {
	f := newFixture(t)
	f.account(t, "kavindu@campus.lk", auth.RoleLecturer)

	_, err := f.run("seed-menu", "--operator", "kavindu@campus.lk", "--count", "1")
	require.ErrorIs(t, err, auth.ErrAccessDenied)

	_, err = f.run("seed-menu", "--operator", "nobody@campus.lk")
	require.Error(t, err)
}

func TestResetStockRefillsDrawnDownItems(t *testing.T) {
	f := newFixture(t)
	item, err := catalogdomain.NewMenuItem("Fish Bun", decimal.NewFromInt(120), catalogdomain.CategoryShortEats)
	require.NoError(t, err)
	item.DailyQuantity = 50
	item.RemainingQuantity = 5
	saved, err := f.menu.Save(context.Background(), item)
	require.NoError(t, err)

	output, err := f.run("reset-stock")
	require.NoError(t, err)
	require.Equal(t, "reset 1 menu items\n", output)

	stored, err := f.menu.GetByID(context.Background(), saved.ID)
	require.NoError(t, err)
	require.Equal(t, int32(50), stored.RemainingQuantity)
}

func TestPurgeSessionsDropsExpiredOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.sessions.Save(ctx, userdomain.Session{Token: "old", UserID: 1, ExpiresAt: fixedNow.Add(-time.Hour)}))
	require.NoError(t, f.sessions.Save(ctx, userdomain.Session{Token: "live", UserID: 1, ExpiresAt: fixedNow.Add(time.Hour)}))

	output, err := f.run("purge-sessions")
	require.NoError(t, err)
	require.Equal(t, "purged 1 sessions\n", output)

	_, err = f.sessions.Get(ctx, "live")
	require.NoError(t, err)
}

func TestExportAnalyticsUploadsReport(t *testing.T) {
	f := newFixture(t)
	f.account(t, "admin@campus.lk", auth.RoleAdmin)

	output, err := f.run("export-analytics", "--operator", "admin@campus.lk", "--bucket", "reports", "--from", "2025-10-01", "--to", "2025-10-18")
	require.NoError(t, err)
	key := "analytics/orders-20251018T090000Z.json"
	require.Equal(t, "exported analytics to s3://reports/"+key+"\n", output)

	var report map[string]any
	require.NoError(t, json.Unmarshal(f.uploads[key], &report))
	require.Contains(t, report, "dailySales")
	require.Contains(t, report, "popularItems")
}

func TestExportAnalyticsIsAdminOnly(t *testing.T) {
	f := newFixture(t)
	f.account(t, "cook@campus.lk", auth.RoleStaff)

	_, err := f.run("export-analytics", "--operator", "cook@campus.lk")
	require.ErrorIs(t, err, auth.ErrAccessDenied)
	require.Empty(t, f.uploads)
}
