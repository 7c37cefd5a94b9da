package orders

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/campus-canteen/internal/domains/orders/application/types"
	orderactivities "github.com/Apurer/campus-canteen/internal/platform/temporal/activities/orders"
	"github.com/Apurer/campus-canteen/internal/platform/temporal/sequences"
)

const (
	// OrderPlacementWorkflowName is the public identifier for registering the workflow.
	OrderPlacementWorkflowName = "orders.workflows.Placement"
	// OrderPlacementTaskQueue is the queue consumed by the worker processing order workflows.
	OrderPlacementTaskQueue = "ORDER_PLACEMENT"
)

// OrderPlacementWorkflowInput captures the customer's request and its originating trace.
type OrderPlacementWorkflowInput struct {
	Command orderactivities.PlaceOrderCommand
	TraceID string
}

// OrderPlacementWorkflow places an order and announces it to the kitchen.
func OrderPlacementWorkflow(ctx workflow.Context, input OrderPlacementWorkflowInput) (*types.OrderView, error) {
	logger := workflow.GetLogger(ctx)
	customerID := input.Command.Caller.UserID
	logger.Info("OrderPlacementWorkflow started", withTraceID(input.TraceID, "customerId", customerID)...)
	view, err := sequences.RunOrderPlacementSequence(ctx, input.Command)
	if err != nil {
		logger.Error("OrderPlacementWorkflow failed", withTraceID(input.TraceID, "customerId", customerID, "error", err)...)
		return nil, err
	}
	if view != nil && view.Order != nil {
		logger.Info("OrderPlacementWorkflow completed", withTraceID(input.TraceID, "orderNumber", view.Order.OrderNumber)...)
	} else {
		logger.Info("OrderPlacementWorkflow completed", withTraceID(input.TraceID)...)
	}
	return view, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
