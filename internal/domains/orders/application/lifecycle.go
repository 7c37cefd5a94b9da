package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	catalogports "github.com/Apurer/campus-canteen/internal/domains/catalog/ports"
	"github.com/Apurer/campus-canteen/internal/domains/orders/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/orders/domain"
	"github.com/Apurer/campus-canteen/internal/domains/orders/ports"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

// UpdateStatus moves an order forward. Moving to cancelled takes the cancellation path
// so stock is returned.
func (s *Service) UpdateStatus(ctx context.Context, caller auth.Principal, input types.UpdateStatusInput) (*types.OrderView, error) {
	if err := auth.Authorize(caller, auth.OpUpdateOrderStatus); err != nil {
		return nil, err
	}
	next, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, mapError(err)
	}
	if next == domain.StatusCancelled {
		return s.cancel(ctx, caller, input.OrderID)
	}

	var (
		updated *domain.Order
		from    domain.Status
	)
	err = s.uow.Do(ctx, func(ctx context.Context, stores ports.Stores) error {
		order, err := stores.Orders.GetByID(ctx, input.OrderID)
		if err != nil {
			return err
		}
		from = order.Status
		if err := order.Advance(next, input.ReadyAt, s.now()); err != nil {
			return err
		}
		updated, err = stores.Orders.Save(ctx, order)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.OrderStatusChanged(updated, from))
	return s.view(ctx, updated), nil
}

// CancelOrder is open to the owning customer and to staff.
func (s *Service) CancelOrder(ctx context.Context, caller auth.Principal, id int64) (*types.OrderView, error) {
	if err := auth.Authorize(caller, auth.OpCancelOrder); err != nil {
		return nil, err
	}
	return s.cancel(ctx, caller, id)
}

// cancel closes the order and returns every line's quantity to the menu in the same unit of work.
// Items deleted from the menu since the order was placed are skipped.
func (s *Service) cancel(ctx context.Context, caller auth.Principal, id int64) (*types.OrderView, error) {
	var (
		cancelled *domain.Order
		from      domain.Status
	)
	err := s.uow.Do(ctx, func(ctx context.Context, stores ports.Stores) error {
		order, err := stores.Orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !caller.CanActOnBehalfOf(order.CustomerID) {
			return fmt.Errorf("%w: order %d belongs to another customer", auth.ErrAccessDenied, id)
		}
		from = order.Status
		if err := order.Cancel(s.now()); err != nil {
			return err
		}
		for _, line := range order.Items {
			if _, err := stores.Menu.Release(ctx, line.MenuItemID, line.Quantity); err != nil {
				if errors.Is(err, catalogports.ErrNotFound) {
					s.logger.LogAttrs(ctx, slog.LevelWarn, "menu item gone, stock not restored",
						slog.Int64("order.id", id), slog.Int64("menu_item.id", line.MenuItemID))
					continue
				}
				return err
			}
		}
		cancelled, err = stores.Orders.Save(ctx, order)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.OrderCancelled(cancelled, from))
	return s.view(ctx, cancelled), nil
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, caller auth.Principal, input types.UpdatePaymentStatusInput) (*types.OrderView, error) {
	if err := auth.Authorize(caller, auth.OpUpdatePaymentStatus); err != nil {
		return nil, err
	}
	status, err := domain.ParsePaymentStatus(input.PaymentStatus)
	if err != nil {
		return nil, mapError(err)
	}

	var (
		updated *domain.Order
		from    domain.PaymentStatus
	)
	err = s.uow.Do(ctx, func(ctx context.Context, stores ports.Stores) error {
		order, err := stores.Orders.GetByID(ctx, input.OrderID)
		if err != nil {
			return err
		}
		from = order.PaymentStatus
		if err := order.SetPaymentStatus(status, s.now()); err != nil {
			return err
		}
		updated, err = stores.Orders.Save(ctx, order)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.PaymentStatusChanged(updated, from))
	return s.view(ctx, updated), nil
}

// AddFeedback lets the customer who placed a completed order rate it. Staff are not exempt.
func (s *Service) AddFeedback(ctx context.Context, caller auth.Principal, input types.FeedbackInput) (*types.OrderView, error) {
	if err := auth.Authorize(caller, auth.OpAddFeedback); err != nil {
		return nil, err
	}

	var updated *domain.Order
	err := s.uow.Do(ctx, func(ctx context.Context, stores ports.Stores) error {
		order, err := stores.Orders.GetByID(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if !order.OwnedBy(caller.UserID) {
			return fmt.Errorf("%w: only the customer who placed order %d can rate it", auth.ErrAccessDenied, input.OrderID)
		}
		if err := order.AttachFeedback(input.Rating, input.Feedback, s.now()); err != nil {
			return err
		}
		updated, err = stores.Orders.Save(ctx, order)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return s.view(ctx, updated), nil
}
