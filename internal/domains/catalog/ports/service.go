package ports

import (
	"context"

	"github.com/Apurer/campus-canteen/internal/domains/catalog/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/catalog/domain"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

// Service exposes menu use cases to adapters. Reads are public; writes take the caller.
type Service interface {
	ListMenu(ctx context.Context, input types.ListMenuInput) ([]*domain.MenuItem, error)
	Categories(ctx context.Context) []domain.Category
	GetMenuItem(ctx context.Context, id int64) (*domain.MenuItem, error)
	CreateMenuItem(ctx context.Context, caller auth.Principal, input types.MenuItemMutationInput) (*domain.MenuItem, error)
	UpdateMenuItem(ctx context.Context, caller auth.Principal, input types.UpdateMenuItemInput) (*domain.MenuItem, error)
	ToggleAvailability(ctx context.Context, caller auth.Principal, id int64) (*domain.MenuItem, error)
	UpdateQuantities(ctx context.Context, caller auth.Principal, input types.UpdateQuantitiesInput) (*domain.MenuItem, error)
	DeleteMenuItem(ctx context.Context, caller auth.Principal, id int64) error
	ResetDailyStock(ctx context.Context) (int64, error)
}
