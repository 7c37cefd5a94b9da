package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/campus-canteen/internal/domains/orders/application/types"
	orderactivities "github.com/Apurer/campus-canteen/internal/platform/temporal/activities/orders"
)

// RunOrderPlacementSequence places the order once, then notifies the kitchen with retries.
// A failed notification does not fail the placement: the order is already committed.
func RunOrderPlacementSequence(ctx workflow.Context, cmd orderactivities.PlaceOrderCommand) (*types.OrderView, error) {
	logger := workflow.GetLogger(ctx)
	customerID := cmd.Caller.UserID
	logger.Info("order placement sequence started", "customerId", customerID)
	placeOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	notifyOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 15 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}

	var view types.OrderView
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, placeOptions), orderactivities.PlaceOrderActivityName, cmd).Get(ctx, &view)
	if err != nil {
		logger.Error("order placement sequence failed", "customerId", customerID, "error", err)
		return nil, err
	}
	if view.Order == nil {
		logger.Info("order placement sequence placed nothing", "customerId", customerID)
		return &view, nil
	}
	logger.Info("order placement sequence placed", "orderNumber", view.Order.OrderNumber)

	notify := orderactivities.NotifyKitchenInput{OrderID: view.Order.ID}
	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, notifyOptions), orderactivities.NotifyKitchenActivityName, notify).Get(ctx, nil); err != nil {
		logger.Warn("order placement sequence could not notify kitchen", "orderNumber", view.Order.OrderNumber, "error", err)
		return &view, nil
	}
	logger.Info("order placement sequence notified kitchen", "orderNumber", view.Order.OrderNumber)
	return &view, nil
}
