package ports

import (
	"context"
	"errors"

	"github.com/Apurer/campus-canteen/internal/domains/users/domain"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("user already exists")
	ErrStudentIDTaken     = errors.New("student ID already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ListFilter narrows admin user listings. Zero values match everything.
type ListFilter struct {
	Role       auth.Role
	Department domain.Department
	Active     *bool
}

// Repository persists accounts. Email and student ID are unique.
type Repository interface {
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.User, error)
	ExistsStudentID(ctx context.Context, studentID string) (bool, error)
	// List returns matches newest first.
	List(ctx context.Context, filter ListFilter) ([]*domain.User, error)
}
