package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/campus-canteen/internal/domains/inventory/domain"
	"github.com/Apurer/campus-canteen/internal/domains/inventory/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory inventory persistence adapter.
type Repository struct {
	mu     sync.RWMutex
	items  map[int64]*domain.Item
	nextID int64
}

func NewRepository() *Repository {
	return &Repository{items: map[int64]*domain.Item{}}
}

func (r *Repository) Save(_ context.Context, item *domain.Item) (*domain.Item, error) {
	if item == nil {
		return nil, errors.New("inventory item is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(item)
}

func (r *Repository) saveLocked(item *domain.Item) (*domain.Item, error) {
	clone := item.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	for id, existing := range r.items {
		if id != clone.ID && strings.EqualFold(existing.Ingredient, clone.Ingredient) {
			return nil, ports.ErrDuplicateIngredient
		}
	}
	now := time.Now()
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
		clone.CreatedAt = now
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	clone.UpdatedAt = now
	r.items[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return item.Clone(), nil
}

func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]*domain.Item, error) {
	out := r.collect(func(item *domain.Item) bool {
		if filter.Category != "" && item.Category != filter.Category {
			return false
		}
		return !filter.LowStockOnly || item.IsLowStock()
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Ingredient < out[j].Ingredient })
	return out, nil
}

func (r *Repository) ListLowStock(_ context.Context) ([]*domain.Item, error) {
	out := r.collect((*domain.Item).IsLowStock)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CurrentStock < out[j].CurrentStock })
	return out, nil
}

func (r *Repository) Categories(_ context.Context) ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	used := map[domain.Category]bool{}
	for _, item := range r.items {
		used[item.Category] = true
	}
	out := []domain.Category{}
	for _, c := range domain.Categories() {
		if used[c] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *Repository) Update(_ context.Context, id int64, mutate func(*domain.Item) error) (*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	item := current.Clone()
	if err := mutate(item); err != nil {
		return nil, err
	}
	item.ID = id
	return r.saveLocked(item)
}

func (r *Repository) collect(keep func(*domain.Item) bool) []*domain.Item {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Item, 0, len(r.items))
	for _, item := range r.items {
		if keep(item) {
			out = append(out, item.Clone())
		}
	}
	return out
}
