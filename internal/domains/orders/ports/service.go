package ports

import (
	"context"

	"github.com/Apurer/campus-canteen/internal/domains/orders/application/types"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

// Service exposes order use cases to adapters. Every call names its caller.
type Service interface {
	PlaceOrder(ctx context.Context, caller auth.Principal, input types.PlaceOrderInput) (*types.OrderView, error)
	ListMyOrders(ctx context.Context, caller auth.Principal, input types.ListOrdersInput) (*types.OrderPage, error)
	ListOrders(ctx context.Context, caller auth.Principal, input types.ListOrdersInput) (*types.OrderPage, error)
	GetOrder(ctx context.Context, caller auth.Principal, id int64) (*types.OrderView, error)
	UpdateStatus(ctx context.Context, caller auth.Principal, input types.UpdateStatusInput) (*types.OrderView, error)
	CancelOrder(ctx context.Context, caller auth.Principal, id int64) (*types.OrderView, error)
	UpdatePaymentStatus(ctx context.Context, caller auth.Principal, input types.UpdatePaymentStatusInput) (*types.OrderView, error)
	AddFeedback(ctx context.Context, caller auth.Principal, input types.FeedbackInput) (*types.OrderView, error)
	Analytics(ctx context.Context, caller auth.Principal, input types.AnalyticsInput) (*types.AnalyticsReport, error)
}
