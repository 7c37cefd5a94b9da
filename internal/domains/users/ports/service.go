package ports

import (
	"context"

	"github.com/Apurer/campus-canteen/internal/domains/users/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/users/domain"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

// Service exposes user bounded context use cases to adapters.
type Service interface {
	Register(ctx context.Context, input types.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*types.LoginResult, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	Profile(ctx context.Context, caller auth.Principal) (*domain.User, error)
	UpdateProfile(ctx context.Context, caller auth.Principal, input types.ProfileInput) (*domain.User, error)
	ListUsers(ctx context.Context, caller auth.Principal, input types.ListUsersInput) ([]*domain.User, error)
	ToggleStatus(ctx context.Context, caller auth.Principal, id int64) (*domain.User, error)
	SetRole(ctx context.Context, caller auth.Principal, id int64, role string) (*domain.User, error)
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}
