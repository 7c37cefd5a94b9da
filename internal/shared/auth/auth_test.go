package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthorize_AllowList(t *testing.T) {
	student := Principal{UserID: 1, Role: RoleStudent}
	staff := Principal{UserID: 2, Role: RoleStaff}
	admin := Principal{UserID: 3, Role: RoleAdmin}

	require.NoError(t, Authorize(student, OpPlaceOrder))
	require.ErrorIs(t, Authorize(student, OpUpdateOrderStatus), ErrAccessDenied)
	require.NoError(t, Authorize(staff, OpUpdateOrderStatus))
	require.ErrorIs(t, Authorize(staff, OpViewAnalytics), ErrAccessDenied)
	require.NoError(t, Authorize(admin, OpViewAnalytics))
}

func TestAuthorize_UnknownOperationDenied(t *testing.T) {
	admin := Principal{UserID: 3, Role: RoleAdmin}
	require.ErrorIs(t, Authorize(admin, Operation("orders.delete")), ErrAccessDenied)
}

func TestAuthorize_AnonymousRejected(t *testing.T) {
	require.ErrorIs(t, Authorize(Principal{}, OpPlaceOrder), ErrUnauthenticated)
	require.ErrorIs(t, Authorize(Principal{UserID: 9, Role: "chef"}, OpPlaceOrder), ErrUnauthenticated)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" Lecturer ")
	require.NoError(t, err)
	require.Equal(t, RoleLecturer, role)

	_, err = ParseRole("superuser")
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestCanActOnBehalfOf(t *testing.T) {
	owner := Principal{UserID: 10, Role: RoleStudent}
	stranger := Principal{UserID: 11, Role: RoleLecturer}
	staff := Principal{UserID: 12, Role: RoleStaff}

	require.True(t, owner.CanActOnBehalfOf(10))
	require.False(t, stranger.CanActOnBehalfOf(10))
	require.True(t, staff.CanActOnBehalfOf(10))
}

func TestPrincipalContextRoundTrip(t *testing.T) {
	_, ok := PrincipalFrom(context.Background())
	require.False(t, ok)

	ctx := WithPrincipal(context.Background(), Principal{UserID: 5, Role: RoleAdmin})
	p, ok := PrincipalFrom(ctx)
	require.True(t, ok)
	require.Equal(t, int64(5), p.UserID)
}
