package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Apurer/campus-canteen/internal/domains/catalog/domain"
	"github.com/Apurer/campus-canteen/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory menu persistence adapter.
type Repository struct {
	mu     sync.RWMutex
	items  map[int64]*domain.MenuItem
	nextID int64
}

func NewRepository() *Repository {
	return &Repository{items: map[int64]*domain.MenuItem{}}
}

func (r *Repository) Save(_ context.Context, item *domain.MenuItem) (*domain.MenuItem, error) {
	if item == nil {
		return nil, errors.New("menu item is nil")
	}
	clone := item.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.items[clone.ID]; ok {
		clone.DailyQuantity = stored.DailyQuantity
		clone.RemainingQuantity = stored.RemainingQuantity
		clone.Popularity = stored.Popularity
	}
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	r.items[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.MenuItem, error) {
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

func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]*domain.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.MenuItem, 0, len(r.items))
	for _, item := range r.items {
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		if filter.Available != nil && item.Available != *filter.Available {
			continue
		}
		if !item.HasAllTags(filter.DietaryTags) {
			continue
		}
		list = append(list, item.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Popularity != list[j].Popularity {
			return list[i].Popularity > list[j].Popularity
		}
		return list[i].Name < list[j].Name
	})
	return list, nil
}

func (r *Repository) Reserve(_ context.Context, id int64, qty int32) (*domain.MenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if err := item.Reserve(qty); err != nil {
		return nil, err
	}
	return item.Clone(), nil
}

func (r *Repository) Release(_ context.Context, id int64, qty int32) (*domain.MenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	item.Restore(qty)
	return item.Clone(), nil
}

func (r *Repository) ResetRemaining(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var changed int64
	for _, item := range r.items {
		if item.RemainingQuantity != item.DailyQuantity {
			item.ResetDaily()
			changed++
		}
	}
	return changed, nil
}

func (r *Repository) SetQuantities(_ context.Context, id int64, daily int32, remaining *int32) (*domain.MenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	next := item.RemainingQuantity
	if remaining != nil {
		next = *remaining
	} else if next > daily {
		next = daily
	}
	if err := item.SetQuantities(daily, &next); err != nil {
		return nil, err
	}
	return item.Clone(), nil
}

// Restore overwrites stored state with a snapshot taken earlier; used to roll back
// a failed unit of work.
func (r *Repository) Restore(snapshot *domain.MenuItem) {
	if snapshot == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[snapshot.ID] = snapshot.Clone()
}
