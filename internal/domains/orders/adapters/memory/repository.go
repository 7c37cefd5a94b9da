package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/campus-canteen/internal/domains/orders/domain"
	"github.com/Apurer/campus-canteen/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter.
type Repository struct {
	mu       sync.RWMutex
	orders   map[int64]*domain.Order
	nextID   int64
	sequence int64
}

func NewRepository() *Repository {
	return &Repository{orders: map[int64]*domain.Order{}}
}

func (r *Repository) Save(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := order.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else if _, ok := r.orders[clone.ID]; !ok {
		return nil, ports.ErrNotFound
	}
	r.orders[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]*domain.Order, int64, error) {
	matched := r.collect(filter)
	newestFirst(matched)
	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return []*domain.Order{}, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *Repository) ListCreatedBetween(_ context.Context, from, to *time.Time) ([]*domain.Order, error) {
	return r.collect(ports.ListFilter{CreatedFrom: from, CreatedTo: to}), nil
}

func (r *Repository) NextOrderNumber(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sequence++
	return r.sequence, nil
}

func (r *Repository) collect(filter ports.ListFilter) []*domain.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if matches(order, filter) {
			out = append(out, order.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// put and remove are used by the unit of work to undo a failed transaction.
func (r *Repository) put(snapshot *domain.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[snapshot.ID] = snapshot.Clone()
}

func (r *Repository) remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, id)
}

func matches(order *domain.Order, filter ports.ListFilter) bool {
	if filter.CustomerID != 0 && order.CustomerID != filter.CustomerID {
		return false
	}
	if filter.Status != "" && order.Status != filter.Status {
		return false
	}
	if filter.Type != "" && order.Type != filter.Type {
		return false
	}
	if filter.PaymentStatus != "" && order.PaymentStatus != filter.PaymentStatus {
		return false
	}
	if filter.CreatedFrom != nil && order.CreatedAt.Before(*filter.CreatedFrom) {
		return false
	}
	if filter.CreatedTo != nil && !order.CreatedAt.Before(*filter.CreatedTo) {
		return false
	}
	return true
}

func newestFirst(orders []*domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
}
