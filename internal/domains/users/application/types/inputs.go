package types

import (
	"time"

	"github.com/Apurer/campus-canteen/internal/domains/users/domain"
)

// RegisterInput is a self-service signup. Role defaults to student.
type RegisterInput struct {
	Email             string
	Password          string
	Role              string
	FirstName         string
	LastName          string
	StudentID         string
	Department        string
	DietaryPreference string
	Phone             string
}

// ProfileInput replaces the caller's own profile fields.
type ProfileInput struct {
	FirstName         string
	LastName          string
	Department        string
	DietaryPreference string
	Phone             string
}

// ListUsersInput filters the admin user listing.
type ListUsersInput struct {
	Role       string
	Department string
	Active     *bool
}

// LoginResult carries the bearer token issued for a session.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}
