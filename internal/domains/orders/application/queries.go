package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Apurer/campus-canteen/internal/domains/orders/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/orders/domain"
	"github.com/Apurer/campus-canteen/internal/domains/orders/ports"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
	"github.com/Apurer/campus-canteen/internal/shared/projection"
)

const dateLayout = "2006-01-02"

// GetOrder returns an order to its owner or to staff.
func (s *Service) GetOrder(ctx context.Context, caller auth.Principal, id int64) (*types.OrderView, error) {
	if err := auth.Authorize(caller, auth.OpViewOrder); err != nil {
		return nil, err
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if !caller.CanActOnBehalfOf(order.CustomerID) {
		return nil, fmt.Errorf("%w: order %d belongs to another customer", auth.ErrAccessDenied, id)
	}
	return s.view(ctx, order), nil
}

// ListMyOrders lists the caller's own orders. Only the status filter applies.
func (s *Service) ListMyOrders(ctx context.Context, caller auth.Principal, input types.ListOrdersInput) (*types.OrderPage, error) {
	if err := auth.Authorize(caller, auth.OpListOwnOrders); err != nil {
		return nil, err
	}
	filter := ports.ListFilter{CustomerID: caller.UserID}
	if strings.TrimSpace(input.Status) != "" {
		status, err := domain.ParseStatus(input.Status)
		if err != nil {
			return nil, mapError(err)
		}
		filter.Status = status
	}
	return s.page(ctx, filter, projection.PageRequest{Page: input.Page, Limit: input.Limit}.Normalize(DefaultMyOrdersLimit))
}

// ListOrders lists every order for staff with status, type, payment and calendar-day filters.
func (s *Service) ListOrders(ctx context.Context, caller auth.Principal, input types.ListOrdersInput) (*types.OrderPage, error) {
	if err := auth.Authorize(caller, auth.OpListAllOrders); err != nil {
		return nil, err
	}
	var filter ports.ListFilter
	if strings.TrimSpace(input.Status) != "" {
		status, err := domain.ParseStatus(input.Status)
		if err != nil {
			return nil, mapError(err)
		}
		filter.Status = status
	}
	if strings.TrimSpace(input.Type) != "" {
		typ, err := domain.ParseType(input.Type)
		if err != nil {
			return nil, mapError(err)
		}
		filter.Type = typ
	}
	if strings.TrimSpace(input.PaymentStatus) != "" {
		payment, err := domain.ParsePaymentStatus(input.PaymentStatus)
		if err != nil {
			return nil, mapError(err)
		}
		filter.PaymentStatus = payment
	}
	if strings.TrimSpace(input.Date) != "" {
		day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(input.Date), s.location)
		if err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
		}
		next := day.AddDate(0, 0, 1)
		filter.CreatedFrom = &day
		filter.CreatedTo = &next
	}
	return s.page(ctx, filter, projection.PageRequest{Page: input.Page, Limit: input.Limit}.Normalize(DefaultAllOrdersLimit))
}

func (s *Service) page(ctx context.Context, filter ports.ListFilter, req projection.PageRequest) (*types.OrderPage, error) {
	filter.Offset = req.Offset()
	filter.Limit = req.Limit
	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return &types.OrderPage{
		Items:      s.views(ctx, orders),
		Pagination: projection.NewPagination(req, total),
	}, nil
}
