// Package auth holds the closed role set, the caller principal, and the single
// per-operation authorization gate shared by every bounded context.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Role enumerates account capabilities.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleStudent  Role = "student"
	RoleLecturer Role = "lecturer"
)

var (
	// ErrUnauthenticated signals a missing or invalid caller identity.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrAccessDenied signals an authenticated caller without the required capability.
	ErrAccessDenied = errors.New("access denied")
	// ErrInvalidRole signals a role outside the closed set.
	ErrInvalidRole = errors.New("role is invalid")
)

// Roles lists every known role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleStaff, RoleStudent, RoleLecturer}
}

// ParseRole converts raw input into a Role.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
	}
	return role, nil
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleStudent, RoleLecturer:
		return true
	default:
		return false
	}
}

// IsStaff reports whether the role operates the canteen (staff or admin).
func (r Role) IsStaff() bool {
	return r == RoleStaff || r == RoleAdmin
}

// IsCustomer reports whether the role orders food.
func (r Role) IsCustomer() bool {
	return r == RoleStudent || r == RoleLecturer
}

// Principal identifies the authenticated caller.
type Principal struct {
	UserID int64
	Role   Role
}

// Authenticated reports whether the principal carries a usable identity.
func (p Principal) Authenticated() bool {
	return p.UserID > 0 && p.Role.Valid()
}

// CanActOnBehalfOf reports whether the caller owns the resource or operates the canteen.
func (p Principal) CanActOnBehalfOf(ownerID int64) bool {
	if !p.Authenticated() {
		return false
	}
	return p.UserID == ownerID || p.Role.IsStaff()
}

type principalKey struct{}

// WithPrincipal stores the caller in the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom extracts the caller stored by WithPrincipal.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || !p.Authenticated() {
		return Principal{}, false
	}
	return p, true
}
