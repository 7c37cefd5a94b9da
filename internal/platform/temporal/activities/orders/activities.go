package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/Apurer/campus-canteen/internal/domains/orders/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/orders/domain"
	ordersports "github.com/Apurer/campus-canteen/internal/domains/orders/ports"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

const (
	// PlaceOrderActivityName reserves stock and stores the order in one transaction.
	PlaceOrderActivityName = "orders.activities.PlaceOrder"
	// NotifyKitchenActivityName publishes the placed order to the kitchen.
	NotifyKitchenActivityName = "orders.activities.NotifyKitchen"
)

// PlaceOrderCommand is the activity payload; the caller travels with the request.
type PlaceOrderCommand struct {
	Caller auth.Principal
	Input  types.PlaceOrderInput
}

// NotifyKitchenInput identifies the committed order to announce.
type NotifyKitchenInput struct {
	OrderID int64
}

// Activities groups the order placement activities.
type Activities struct {
	service   ordersports.Service
	orders    ordersports.Repository
	publisher ordersports.EventPublisher
}

// NewActivities wires the order collaborators into the Temporal activities bundle.
// service should be built without a publisher so the kitchen is notified once, by NotifyKitchen.
func NewActivities(service ordersports.Service, orders ordersports.Repository, publisher ordersports.EventPublisher) *Activities {
	return &Activities{service: service, orders: orders, publisher: publisher}
}

// PlaceOrder runs the placement use case. Business rejections come back non-retryable.
func (a *Activities) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (*types.OrderView, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("order placement activity not initialized", "customerId", cmd.Caller.UserID)
		return nil, errors.New("order placement activity not initialized")
	}
	logger.Info("PlaceOrder activity started", "customerId", cmd.Caller.UserID, "lines", len(cmd.Input.Items))
	view, err := a.service.PlaceOrder(ctx, cmd.Caller, cmd.Input)
	if err != nil {
		logger.Error("PlaceOrder activity failed", "customerId", cmd.Caller.UserID, "error", err)
		return nil, ToApplicationError(err)
	}
	logger.Info("PlaceOrder activity completed", "orderNumber", view.Order.OrderNumber)
	return view, nil
}

// NotifyKitchen loads the stored order and publishes its placed event.
func (a *Activities) NotifyKitchen(ctx context.Context, input NotifyKitchenInput) error {
	logger := activity.GetLogger(ctx)
	if a == nil {
		return errors.New("kitchen notify activity not initialized")
	}
	if a.publisher == nil {
		logger.Info("kitchen publisher not configured; skipping", "orderId", input.OrderID)
		return nil
	}
	if a.orders == nil {
		logger.Error("order repository not configured for notify", "orderId", input.OrderID)
		return errors.New("order repository not configured for notify")
	}

	var hb notifyHeartbeat
	if activity.HasHeartbeatDetails(ctx) {
		_ = activity.GetHeartbeatDetails(ctx, &hb)
	}
	if hb.Published {
		logger.Info("NotifyKitchen already published in prior attempt; skipping", "orderId", input.OrderID)
		return nil
	}

	order, err := a.orders.GetByID(ctx, input.OrderID)
	if err != nil {
		logger.Error("NotifyKitchen failed to load order", "orderId", input.OrderID, "error", err)
		return ToApplicationError(err)
	}
	if err := a.publisher.Publish(ctx, domain.OrderPlaced(order)); err != nil {
		logger.Error("NotifyKitchen failed", "orderNumber", order.OrderNumber, "error", err)
		return err
	}
	activity.RecordHeartbeat(ctx, notifyHeartbeat{Published: true})
	logger.Info("NotifyKitchen activity completed", "orderNumber", order.OrderNumber)
	return nil
}

type notifyHeartbeat struct {
	Published bool
}
