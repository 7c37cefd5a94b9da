//go:build integration
// +build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/campus-canteen/internal/domains/users/domain"
	"github.com/Apurer/campus-canteen/internal/domains/users/ports"
	"github.com/Apurer/campus-canteen/internal/platform/migrations"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

func setupUsersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
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

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func newLecturer(t *testing.T, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(email, "hunter22", auth.RoleLecturer, domain.Profile{FirstName: "Nimal", LastName: "Silva"})
	require.NoError(t, err)
	return user
}

func TestRepository_SaveAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	saved, err := repo.Save(ctx, newLecturer(t, "nimal@campus.lk"))
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	fetched, err := repo.GetByEmail(ctx, "NIMAL@campus.lk")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, fetched.ID)
	assert.True(t, fetched.CheckPassword("hunter22"))

	byID, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleLecturer, byID.Role)

	_, err = repo.GetByID(ctx, saved.ID+100)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_UniqueConstraints(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Save(ctx, newLecturer(t, "nimal@campus.lk"))
	require.NoError(t, err)
	_, err = repo.Save(ctx, newLecturer(t, "nimal@campus.lk"))
	assert.ErrorIs(t, err, ports.ErrEmailTaken)

	profile := domain.Profile{FirstName: "S", LastName: "One", StudentID: "ICT/21/001", Department: domain.DepartmentICT}
	first, err := domain.NewUser("s1@campus.lk", "hunter22", auth.RoleStudent, profile)
	require.NoError(t, err)
	_, err = repo.Save(ctx, first)
	require.NoError(t, err)

	exists, err := repo.ExistsStudentID(ctx, "ICT/21/001")
	require.NoError(t, err)
	assert.True(t, exists)

	second, err := domain.NewUser("s2@campus.lk", "hunter22", auth.RoleStudent, profile)
	require.NoError(t, err)
	_, err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, ports.ErrStudentIDTaken)

	// Lecturers have no student ID; NULLs do not collide.
	_, err = repo.Save(ctx, newLecturer(t, "other@campus.lk"))
	require.NoError(t, err)
}

func TestRepository_ListFilters(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	var ids []int64
	for i := 1; i <= 3; i++ {
		saved, err := repo.Save(ctx, newLecturer(t, fmt.Sprintf("user%d@campus.lk", i)))
		require.NoError(t, err)
		ids = append(ids, saved.ID)
	}
	inactive, err := repo.GetByID(ctx, ids[1])
	require.NoError(t, err)
	inactive.ToggleActive()
	_, err = repo.Save(ctx, inactive)
	require.NoError(t, err)

	active := true
	users, err := repo.List(ctx, ports.ListFilter{Role: auth.RoleLecturer, Active: &active})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	batch, err := repo.GetByIDs(ctx, []int64{ids[0], ids[2], 9999})
	require.NoError(t, err)
	assert.Len(t, batch, 2)
}

func TestSessionStore_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	store := NewSessionStore(db)
	ctx := context.Background()

	user, err := repo.Save(ctx, newLecturer(t, "nimal@campus.lk"))
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.Save(ctx, domain.Session{Token: "live", UserID: user.ID, ExpiresAt: now.Add(time.Hour), CreatedAt: now}))
	require.NoError(t, store.Save(ctx, domain.Session{Token: "stale", UserID: user.ID, ExpiresAt: now.Add(-time.Hour), CreatedAt: now}))

	session, err := store.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)

	purged, err := store.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = store.Get(ctx, "stale")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	require.NoError(t, store.DeleteForUser(ctx, user.ID))
	_, err = store.Get(ctx, "live")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}
