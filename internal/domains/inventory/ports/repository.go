package ports

import (
	"context"
	"errors"

	"github.com/Apurer/campus-canteen/internal/domains/inventory/domain"
)

var (
	ErrNotFound            = errors.New("inventory item not found")
	ErrDuplicateIngredient = errors.New("ingredient already exists in inventory")
)

// ListFilter narrows inventory listings. Zero values match everything.
type ListFilter struct {
	Category     domain.Category
	LowStockOnly bool
}

// Repository persists inventory items.
type Repository interface {
	Save(ctx context.Context, item *domain.Item) (*domain.Item, error)
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	Delete(ctx context.Context, id int64) error
	// List orders by ingredient name.
	List(ctx context.Context, filter ListFilter) ([]*domain.Item, error)
	// ListLowStock orders by current stock ascending.
	ListLowStock(ctx context.Context) ([]*domain.Item, error)
	// Categories returns the distinct categories in use.
	Categories(ctx context.Context) ([]domain.Category, error)
	// Update loads the item, applies mutate and saves it with no interleaving writer.
	Update(ctx context.Context, id int64, mutate func(*domain.Item) error) (*domain.Item, error)
}
