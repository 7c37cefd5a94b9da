package ports

import (
	"context"
	"errors"
	"time"

	catalogdomain "github.com/Apurer/campus-canteen/internal/domains/catalog/domain"
	"github.com/Apurer/campus-canteen/internal/domains/orders/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/orders/domain"
)

var ErrNotFound = errors.New("order not found")

// ListFilter narrows order listings. Zero values match everything.
// CreatedFrom is inclusive, CreatedTo exclusive.
type ListFilter struct {
	CustomerID    int64
	Status        domain.Status
	Type          domain.Type
	PaymentStatus domain.PaymentStatus
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	Offset        int
	Limit         int
}

// Repository persists orders. Orders are never deleted.
type Repository interface {
	// Save inserts when ID is zero and updates otherwise.
	Save(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// List returns one page, newest first, together with the unpaged total.
	List(ctx context.Context, filter ListFilter) ([]*domain.Order, int64, error)
	// ListCreatedBetween returns every order in the window for reporting.
	ListCreatedBetween(ctx context.Context, from, to *time.Time) ([]*domain.Order, error)
	// NextOrderNumber draws from a dedicated sequence; values are unique and increasing, not gapless.
	NextOrderNumber(ctx context.Context) (int64, error)
}

// MenuStock is the slice of the catalog the order service depends on.
type MenuStock interface {
	GetByID(ctx context.Context, id int64) (*catalogdomain.MenuItem, error)
	Reserve(ctx context.Context, id int64, qty int32) (*catalogdomain.MenuItem, error)
	Release(ctx context.Context, id int64, qty int32) (*catalogdomain.MenuItem, error)
}

// Stores are the repositories bound to one unit of work.
type Stores struct {
	Menu   MenuStock
	Orders Repository
}

// UnitOfWork runs fn so that every write made through stores commits or rolls back together.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}

// StockListener is told which menu items a committed unit of work changed.
type StockListener interface {
	Invalidate(ctx context.Context, ids ...int64)
}

// EventPublisher delivers committed order changes to the kitchen.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// CustomerDirectory resolves customer details for order views.
type CustomerDirectory interface {
	LookupCustomers(ctx context.Context, ids []int64) (map[int64]types.Customer, error)
}
