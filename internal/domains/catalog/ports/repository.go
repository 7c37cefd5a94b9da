package ports

import (
	"context"
	"errors"

	"github.com/Apurer/campus-canteen/internal/domains/catalog/domain"
)

var ErrNotFound = errors.New("menu item not found")

// ListFilter narrows menu listings. Zero values match everything.
type ListFilter struct {
	Category    domain.Category
	Available   *bool
	DietaryTags []domain.DietaryTag
}

// Repository persists menu items. List results are ordered by popularity
// descending, then name ascending.
type Repository interface {
	// Save inserts new items with every field. For existing items only the descriptive
	// fields are written; stock counters and popularity change through StockKeeper.
	Save(ctx context.Context, item *domain.MenuItem) (*domain.MenuItem, error)
	GetByID(ctx context.Context, id int64) (*domain.MenuItem, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter) ([]*domain.MenuItem, error)
	StockKeeper
}

// StockKeeper owns the remaining-quantity counters. Reserve and Release are
// single atomic conditional updates; callers never read-then-write stock.
type StockKeeper interface {
	// Reserve takes qty units if the item is available and has at least qty remaining,
	// adding qty to popularity. It returns ErrNotFound, domain.ErrUnavailable or
	// domain.ErrInsufficientQuantity without changing anything otherwise.
	Reserve(ctx context.Context, id int64, qty int32) (*domain.MenuItem, error)
	// Release returns qty units, capped at the daily quantity.
	Release(ctx context.Context, id int64, qty int32) (*domain.MenuItem, error)
	// ResetRemaining refills every item to its daily quantity and reports how many changed.
	ResetRemaining(ctx context.Context) (int64, error)
	// SetQuantities replaces the daily quantity in one update. A nil remaining keeps the
	// current counter, lowered to the new daily quantity when it would exceed it.
	SetQuantities(ctx context.Context, id int64, daily int32, remaining *int32) (*domain.MenuItem, error)
}
