package memory

import (
	"context"
	"sync"

	catalogmemory "github.com/Apurer/campus-canteen/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/campus-canteen/internal/domains/catalog/domain"
	"github.com/Apurer/campus-canteen/internal/domains/orders/domain"
	"github.com/Apurer/campus-canteen/internal/domains/orders/ports"
)

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork serialises order writes behind one lock and undoes every change made
// through the bound stores when fn fails. Staff edits made directly on the menu
// repository during a rollback are overwritten by the snapshot.
type UnitOfWork struct {
	mu       sync.Mutex
	menu     *catalogmemory.Repository
	orders   *Repository
	listener ports.StockListener
}

func NewUnitOfWork(menu *catalogmemory.Repository, orders *Repository, listener ports.StockListener) *UnitOfWork {
	return &UnitOfWork{menu: menu, orders: orders, listener: listener}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, stores ports.Stores) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	j := &journal{menu: map[int64]*catalogdomain.MenuItem{}, orders: map[int64]*domain.Order{}}
	stores := ports.Stores{
		Menu:   &journaledMenu{inner: u.menu, journal: j},
		Orders: &journaledOrders{Repository: u.orders, journal: j},
	}
	if err := fn(ctx, stores); err != nil {
		j.rollback(u.menu, u.orders)
		return err
	}
	if u.listener != nil && len(j.touched) > 0 {
		u.listener.Invalidate(ctx, j.touched...)
	}
	return nil
}

type journal struct {
	menu     map[int64]*catalogdomain.MenuItem
	touched  []int64
	orders   map[int64]*domain.Order
	inserted []int64
}

func (j *journal) rollback(menu *catalogmemory.Repository, orders *Repository) {
	for _, snapshot := range j.menu {
		menu.Restore(snapshot)
	}
	for _, snapshot := range j.orders {
		orders.put(snapshot)
	}
	for _, id := range j.inserted {
		orders.remove(id)
	}
}

type journaledMenu struct {
	inner   *catalogmemory.Repository
	journal *journal
}

func (m *journaledMenu) GetByID(ctx context.Context, id int64) (*catalogdomain.MenuItem, error) {
	return m.inner.GetByID(ctx, id)
}

func (m *journaledMenu) Reserve(ctx context.Context, id int64, qty int32) (*catalogdomain.MenuItem, error) {
	if err := m.snapshot(ctx, id); err != nil {
		return nil, err
	}
	return m.inner.Reserve(ctx, id, qty)
}

func (m *journaledMenu) Release(ctx context.Context, id int64, qty int32) (*catalogdomain.MenuItem, error) {
	if err := m.snapshot(ctx, id); err != nil {
		return nil, err
	}
	return m.inner.Release(ctx, id, qty)
}

func (m *journaledMenu) snapshot(ctx context.Context, id int64) error {
	if _, ok := m.journal.menu[id]; ok {
		return nil
	}
	item, err := m.inner.GetByID(ctx, id)
	if err != nil {
		return err
	}
	m.journal.menu[id] = item
	m.journal.touched = append(m.journal.touched, id)
	return nil
}

type journaledOrders struct {
	*Repository
	journal *journal
}

func (o *journaledOrders) Save(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order != nil && order.ID != 0 {
		if _, seen := o.journal.orders[order.ID]; !seen {
			previous, err := o.Repository.GetByID(ctx, order.ID)
			if err != nil {
				return nil, err
			}
			o.journal.orders[order.ID] = previous
		}
	}
	saved, err := o.Repository.Save(ctx, order)
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		o.journal.inserted = append(o.journal.inserted, saved.ID)
	}
	return saved, nil
}
