package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Apurer/campus-canteen/internal/domains/inventory/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/inventory/domain"
	"github.com/Apurer/campus-canteen/internal/domains/inventory/ports"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

const dateLayout = "2006-01-02"

// Service orchestrates inventory use cases.
type Service struct {
	repo  ports.Repository
	clock func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ListItems(ctx context.Context, caller auth.Principal, input types.ListItemsInput) ([]*domain.Item, error) {
	if err := auth.Authorize(caller, auth.OpManageInventory); err != nil {
		return nil, err
	}
	filter := ports.ListFilter{LowStockOnly: input.LowStock}
	if strings.TrimSpace(input.Category) != "" {
		category, err := domain.ParseCategory(input.Category)
		if err != nil {
			return nil, mapError(err)
		}
		filter.Category = category
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) Categories(ctx context.Context, caller auth.Principal) ([]domain.Category, error) {
	if err := auth.Authorize(caller, auth.OpManageInventory); err != nil {
		return nil, err
	}
	return s.repo.Categories(ctx)
}

func (s *Service) LowStock(ctx context.Context, caller auth.Principal) ([]*domain.Item, error) {
	if err := auth.Authorize(caller, auth.OpManageInventory); err != nil {
		return nil, err
	}
	return s.repo.ListLowStock(ctx)
}

// WastageReport totals wastage per ingredient. The date range applies only when both ends are given.
func (s *Service) WastageReport(ctx context.Context, caller auth.Principal, input types.WastageReportInput) (*domain.WastageReport, error) {
	if err := auth.Authorize(caller, auth.OpManageInventory); err != nil {
		return nil, err
	}
	var from, to *time.Time
	if strings.TrimSpace(input.StartDate) != "" && strings.TrimSpace(input.EndDate) != "" {
		start, err := parseBound(input.StartDate, false)
		if err != nil {
			return nil, err
		}
		end, err := parseBound(input.EndDate, true)
		if err != nil {
			return nil, err
		}
		from, to = &start, &end
	}
	items, err := s.repo.List(ctx, ports.ListFilter{})
	if err != nil {
		return nil, err
	}
	report := domain.BuildWastageReport(items, from, to)
	return &report, nil
}

func (s *Service) GetItem(ctx context.Context, caller auth.Principal, id int64) (*domain.Item, error) {
	if err := auth.Authorize(caller, auth.OpManageInventory); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// CreateItem adds an ingredient. Ingredient, unit, category, stock, capacity and cost are required.
func (s *Service) CreateItem(ctx context.Context, caller auth.Principal, input types.ItemInput) (*domain.Item, error) {
	if err := auth.Authorize(caller, auth.OpManageInventory); err != nil {
		return nil, err
	}
	if input.Ingredient == nil || input.Unit == nil || input.Category == nil ||
		input.CurrentStock == nil || input.MaximumCapacity == nil || input.CostPerUnit == nil {
		return nil, fmt.Errorf("%w: ingredient, unit, category, currentStock, maximumCapacity and costPerUnit are required", ErrInvalidInput)
	}
	unit, err := domain.ParseUnit(*input.Unit)
	if err != nil {
		return nil, mapError(err)
	}
	category, err := domain.ParseCategory(*input.Category)
	if err != nil {
		return nil, mapError(err)
	}
	item, err := domain.NewItem(*input.Ingredient, unit, category, *input.CurrentStock, *input.MaximumCapacity, *input.CostPerUnit, s.clock())
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
	return saved, nil
}

func (s *Service) UpdateItem(ctx context.Context, caller auth.Principal, id int64, input types.ItemInput) (*domain.Item, error) {
	if err := auth.Authorize(caller, auth.OpManageInventory); err != nil {
		return nil, err
	}
	now := s.clock()
	item, err := s.repo.Update(ctx, id, func(item *domain.Item) error {
		item.UpdatedAt = now
		return input.Apply(item)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return item, nil
}

func (s *Service) DeleteItem(ctx context.Context, caller auth.Principal, id int64) error {
	if err := auth.Authorize(caller, auth.OpDeleteInventoryItem); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// AdjustStock adds or subtracts stock; subtracting below zero fails with ErrInsufficientStock.
func (s *Service) AdjustStock(ctx context.Context, caller auth.Principal, input types.AdjustStockInput) (*domain.Item, error) {
	if err := auth.Authorize(caller, auth.OpManageInventory); err != nil {
		return nil, err
	}
	op, err := domain.ParseStockOperation(input.Operation)
	if err != nil {
		return nil, mapError(err)
	}
	now := s.clock()
	item, err := s.repo.Update(ctx, input.ID, func(item *domain.Item) error {
		return item.Adjust(op, input.Quantity, now)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return item, nil
}

func (s *Service) RecordWastage(ctx context.Context, caller auth.Principal, input types.WastageInput) (*domain.Item, error) {
	if err := auth.Authorize(caller, auth.OpManageInventory); err != nil {
		return nil, err
	}
	reason, err := domain.ParseWastageReason(input.Reason)
	if err != nil {
		return nil, mapError(err)
	}
	now := s.clock()
	item, err := s.repo.Update(ctx, input.ID, func(item *domain.Item) error {
		return item.RecordWastage(domain.WastageEntry{
			Quantity: input.Quantity,
			Reason:   reason,
			Notes:    strings.TrimSpace(input.Notes),
		}, now)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return item, nil
}

// parseBound accepts YYYY-MM-DD or RFC 3339. A date-only end bound covers the whole day.
func parseBound(raw string, end bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		if end {
			return t.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
		}
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD or RFC 3339", ErrInvalidInput, raw)
	}
	return t, nil
}

var _ ports.Service = (*Service)(nil)
