package application

import (
	"context"
	"errors"
	"fmt"

	catalogdomain "github.com/Apurer/campus-canteen/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/campus-canteen/internal/domains/catalog/ports"
	"github.com/Apurer/campus-canteen/internal/domains/orders/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/orders/domain"
	"github.com/Apurer/campus-canteen/internal/domains/orders/ports"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

// PlaceOrder reserves stock for every line and records the order in one unit of work.
// All lines are checked before any stock is taken; if anything fails nothing is kept.
func (s *Service) PlaceOrder(ctx context.Context, caller auth.Principal, input types.PlaceOrderInput) (*types.OrderView, error) {
	if err := auth.Authorize(caller, auth.OpPlaceOrder); err != nil {
		return nil, err
	}
	draft, err := input.Draft(caller.UserID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := draft.Validate(); err != nil {
		return nil, mapError(err)
	}

	now := s.now()
	var placed *domain.Order
	err = s.uow.Do(ctx, func(ctx context.Context, stores ports.Stores) error {
		menu, err := checkStock(ctx, stores.Menu, draft)
		if err != nil {
			return err
		}
		quantities := draft.Quantities()
		for _, id := range distinctItems(draft) {
			if _, err := stores.Menu.Reserve(ctx, id, quantities[id]); err != nil {
				return stockError(err, id)
			}
		}

		lines := make([]domain.LineItem, 0, len(draft.Lines))
		preparation := make([]int32, 0, len(menu))
		for _, line := range draft.Lines {
			item := menu[line.MenuItemID]
			lines = append(lines, domain.LineItem{
				MenuItemID:   item.ID,
				Name:         item.Name,
				Quantity:     line.Quantity,
				UnitPrice:    item.Price,
				Instructions: line.Instructions,
			})
			preparation = append(preparation, item.PreparationMinutes)
		}

		sequence, err := stores.Orders.NextOrderNumber(ctx)
		if err != nil {
			return err
		}
		order, err := domain.NewOrder(draft, lines, sequence, domain.EstimateReadyAt(now, preparation, s.readyBuffer), now)
		if err != nil {
			return err
		}
		placed, err = stores.Orders.Save(ctx, order)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}

	s.publish(ctx, domain.OrderPlaced(placed))
	return s.view(ctx, placed), nil
}

// checkStock loads every referenced item and verifies the summed quantities without mutating anything.
func checkStock(ctx context.Context, menu ports.MenuStock, draft domain.Draft) (map[int64]*catalogdomain.MenuItem, error) {
	quantities := draft.Quantities()
	items := make(map[int64]*catalogdomain.MenuItem, len(quantities))
	for _, id := range distinctItems(draft) {
		item, err := menu.GetByID(ctx, id)
		if err != nil {
			return nil, stockError(err, id)
		}
		if err := item.CheckReservation(quantities[id]); err != nil {
			return nil, err
		}
		items[id] = item
	}
	return items, nil
}

// distinctItems lists menu item ids in the order they first appear.
func distinctItems(draft domain.Draft) []int64 {
	seen := make(map[int64]bool, len(draft.Lines))
	ids := make([]int64, 0, len(draft.Lines))
	for _, line := range draft.Lines {
		if !seen[line.MenuItemID] {
			seen[line.MenuItemID] = true
			ids = append(ids, line.MenuItemID)
		}
	}
	return ids
}

func stockError(err error, id int64) error {
	if errors.Is(err, catalogports.ErrNotFound) {
		return fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	return err
}
