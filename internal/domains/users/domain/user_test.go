package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

func TestNewUser_HashesPassword(t *testing.T) {
	user, err := NewUser(" Alice@Campus.LK ", "hunter22", auth.RoleLecturer, Profile{FirstName: "Alice", LastName: "Perera"})
	require.NoError(t, err)
	require.Equal(t, "alice@campus.lk", user.Email)
	require.True(t, user.Active)
	require.NotEqual(t, "hunter22", user.PasswordHash)
	require.True(t, user.CheckPassword("hunter22"))
	require.False(t, user.CheckPassword("hunter23"))
	require.Equal(t, PreferenceNone, user.DietaryPreference)
}

func TestNewUser_Validation(t *testing.T) {
	profile := Profile{FirstName: "A", LastName: "B"}
	cases := []struct {
		name     string
		email    string
		password string
		role     auth.Role
		profile  Profile
		want     error
	}{
		{"bad email", "alice", "hunter22", auth.RoleLecturer, profile, ErrInvalidEmail},
		{"empty password", "a@b.c", "  ", auth.RoleLecturer, profile, ErrEmptyPassword},
		{"short password", "a@b.c", "abc", auth.RoleLecturer, profile, ErrWeakPassword},
		{"missing names", "a@b.c", "hunter22", auth.RoleLecturer, Profile{FirstName: "A"}, ErrNameRequired},
		{"student without id", "a@b.c", "hunter22", auth.RoleStudent, profile, ErrStudentDetails},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewUser(tc.email, tc.password, tc.role, tc.profile)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParseDepartment(t *testing.T) {
	d, err := ParseDepartment("ict")
	require.NoError(t, err)
	require.Equal(t, DepartmentICT, d)

	d, err = ParseDepartment("")
	require.NoError(t, err)
	require.Empty(t, d)

	_, err = ParseDepartment("Law")
	require.ErrorIs(t, err, ErrInvalidDepartment)
}

func TestUser_ToggleAndRole(t *testing.T) {
	user := &User{Role: auth.RoleStudent, Active: true}
	require.False(t, user.ToggleActive())
	require.True(t, user.ToggleActive())

	require.NoError(t, user.SetRole(auth.RoleStaff))
	require.Equal(t, auth.RoleStaff, user.Role)
	require.ErrorIs(t, user.SetRole("chef"), auth.ErrInvalidRole)
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := Session{ExpiresAt: now}
	require.True(t, s.Expired(now))
	require.False(t, s.Expired(now.Add(-time.Second)))
}
