package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	catalogpostgres "github.com/Apurer/campus-canteen/internal/domains/catalog/adapters/persistence/postgres"
	catalogdomain "github.com/Apurer/campus-canteen/internal/domains/catalog/domain"
	"github.com/Apurer/campus-canteen/internal/domains/orders/ports"
)

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork runs each call in one database transaction spanning menu stock and orders.
type UnitOfWork struct {
	db       *gorm.DB
	listener ports.StockListener
}

// NewUnitOfWork binds the transaction factory. listener, when set, hears about the menu
// items a committed transaction changed.
func NewUnitOfWork(db *gorm.DB, listener ports.StockListener) *UnitOfWork {
	return &UnitOfWork{db: db, listener: listener}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, stores ports.Stores) error) error {
	if u == nil || u.db == nil {
		return errors.New("postgres unit of work not configured")
	}
	menu := &trackingMenu{}
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		menu.inner = catalogpostgres.NewRepository(tx)
		return fn(ctx, ports.Stores{
			Menu:   menu,
			Orders: NewRepository(tx).lockingReads(),
		})
	})
	if err != nil {
		return err
	}
	if u.listener != nil && len(menu.touched) > 0 {
		u.listener.Invalidate(ctx, menu.touched...)
	}
	return nil
}

// trackingMenu remembers which items had their stock changed.
type trackingMenu struct {
	inner   *catalogpostgres.Repository
	touched []int64
}

func (m *trackingMenu) GetByID(ctx context.Context, id int64) (*catalogdomain.MenuItem, error) {
	return m.inner.GetByID(ctx, id)
}

func (m *trackingMenu) Reserve(ctx context.Context, id int64, qty int32) (*catalogdomain.MenuItem, error) {
	item, err := m.inner.Reserve(ctx, id, qty)
	if err == nil {
		m.touched = append(m.touched, id)
	}
	return item, err
}

func (m *trackingMenu) Release(ctx context.Context, id int64, qty int32) (*catalogdomain.MenuItem, error) {
	item, err := m.inner.Release(ctx, id, qty)
	if err == nil {
		m.touched = append(m.touched, id)
	}
	return item, err
}
