package ports

import (
	"context"

	"github.com/Apurer/campus-canteen/internal/domains/orders/application/types"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

// PlacementOrchestrator runs order placement, either inline or as a durable workflow.
type PlacementOrchestrator interface {
	PlaceOrder(ctx context.Context, caller auth.Principal, input types.PlaceOrderInput) (*types.OrderView, error)
}
