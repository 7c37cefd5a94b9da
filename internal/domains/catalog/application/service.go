package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/Apurer/campus-canteen/internal/domains/catalog/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/catalog/domain"
	"github.com/Apurer/campus-canteen/internal/domains/catalog/ports"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

// Service orchestrates menu use cases.
type Service struct {
	repo ports.Repository
}

// NewService wires the catalog service with its repository.
func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

// ListMenu returns items matching the filter, most popular first.
func (s *Service) ListMenu(ctx context.Context, input types.ListMenuInput) ([]*domain.MenuItem, error) {
	filter := ports.ListFilter{Available: input.Available}
	if strings.TrimSpace(input.Category) != "" {
		category, err := domain.ParseCategory(input.Category)
		if err != nil {
			return nil, mapError(err)
		}
		filter.Category = category
	}
	if len(input.DietaryTags) > 0 {
		tags, err := types.ParseDietaryTags(input.DietaryTags)
		if err != nil {
			return nil, mapError(err)
		}
		filter.DietaryTags = tags
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return items, nil
}

// Categories lists the menu sections.
func (s *Service) Categories(_ context.Context) []domain.Category {
	return domain.Categories()
}

// GetMenuItem loads a single item.
func (s *Service) GetMenuItem(ctx context.Context, id int64) (*domain.MenuItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return item, nil
}

// CreateMenuItem adds an item. Name, price and category are required.
func (s *Service) CreateMenuItem(ctx context.Context, caller auth.Principal, input types.MenuItemMutationInput) (*domain.MenuItem, error) {
	if err := auth.Authorize(caller, auth.OpManageMenu); err != nil {
		return nil, err
	}
	if input.Name == nil || input.Price == nil || input.Category == nil {
		return nil, fmt.Errorf("%w: name, price and category are required", ErrInvalidInput)
	}
	category, err := domain.ParseCategory(*input.Category)
	if err != nil {
		return nil, mapError(err)
	}
	item, err := domain.NewMenuItem(*input.Name, *input.Price, category)
	if err != nil {
		return nil, mapError(err)
	}
	if err := input.Apply(item); err != nil {
		return nil, mapError(err)
	}
	if input.RemainingQuantity == nil {
		item.ResetDaily()
	}
	saved, err := s.repo.Save(ctx, item)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// UpdateMenuItem applies a partial update.
func (s *Service) UpdateMenuItem(ctx context.Context, caller auth.Principal, input types.UpdateMenuItemInput) (*domain.MenuItem, error) {
	if err := auth.Authorize(caller, auth.OpManageMenu); err != nil {
		return nil, err
	}
	item, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := input.Apply(item); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, item)
	if err != nil {
		return nil, mapError(err)
	}
	if input.DailyQuantity == nil && input.RemainingQuantity == nil {
		return saved, nil
	}
	saved, err = s.repo.SetQuantities(ctx, item.ID, item.DailyQuantity, input.RemainingQuantity)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// ToggleAvailability flips the availability flag.
func (s *Service) ToggleAvailability(ctx context.Context, caller auth.Principal, id int64) (*domain.MenuItem, error) {
	if err := auth.Authorize(caller, auth.OpManageMenu); err != nil {
		return nil, err
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	item.ToggleAvailability()
	saved, err := s.repo.Save(ctx, item)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// UpdateQuantities replaces the daily ceiling and the remaining counter.
func (s *Service) UpdateQuantities(ctx context.Context, caller auth.Principal, input types.UpdateQuantitiesInput) (*domain.MenuItem, error) {
	if err := auth.Authorize(caller, auth.OpManageMenu); err != nil {
		return nil, err
	}
	item, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := item.SetQuantities(input.DailyQuantity, input.RemainingQuantity); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.SetQuantities(ctx, item.ID, item.DailyQuantity, &item.RemainingQuantity)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// DeleteMenuItem removes an item. Historical orders keep their captured names and prices.
func (s *Service) DeleteMenuItem(ctx context.Context, caller auth.Principal, id int64) error {
	if err := auth.Authorize(caller, auth.OpDeleteMenuItem); err != nil {
		return err
	}
	return mapError(s.repo.Delete(ctx, id))
}

// ResetDailyStock refills every item to its daily quantity.
func (s *Service) ResetDailyStock(ctx context.Context) (int64, error) {
	n, err := s.repo.ResetRemaining(ctx)
	if err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

var _ ports.Service = (*Service)(nil)
