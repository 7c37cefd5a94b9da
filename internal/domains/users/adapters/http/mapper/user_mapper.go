package mapper

import (
	"time"

	userdomain "github.com/Apurer/campus-canteen/internal/domains/users/domain"
)

// User represents the transport-level user payload. The password hash never leaves the service.
type User struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	StudentID         string    `json:"studentId,omitempty"`
	Department        string    `json:"department,omitempty"`
	DietaryPreference string    `json:"dietaryPreference,omitempty"`
	Phone             string    `json:"phone,omitempty"`
	IsActive          bool      `json:"isActive"`
	CreatedAt         time.Time `json:"createdAt"`
}

// FromDomainUser converts a domain user into a transport representation.
func FromDomainUser(user *userdomain.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:                user.ID,
		Email:             user.Email,
		Role:              string(user.Role),
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		StudentID:         user.StudentID,
		Department:        string(user.Department),
		DietaryPreference: string(user.DietaryPreference),
		Phone:             user.Phone,
		IsActive:          user.Active,
		CreatedAt:         user.CreatedAt,
	}
}

// FromDomainUsers converts a slice of domain users to transport representation.
func FromDomainUsers(users []*userdomain.User) []User {
	result := make([]User, 0, len(users))
	for _, user := range users {
		result = append(result, FromDomainUser(user))
	}
	return result
}
