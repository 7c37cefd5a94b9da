package api

import (
	"github.com/Apurer/campus-canteen/internal/domains/orders/adapters/customers"
	ordersobs "github.com/Apurer/campus-canteen/internal/domains/orders/adapters/observability"
	orderapp "github.com/Apurer/campus-canteen/internal/domains/orders/application"
	orderports "github.com/Apurer/campus-canteen/internal/domains/orders/ports"
	platformobservability "github.com/Apurer/campus-canteen/internal/platform/observability"
)

// NewOrderService builds the instrumented order service shared by the API and the worker.
// A nil publisher leaves event delivery to the caller.
func NewOrderService(cfg Config, backends *Backends, publisher orderports.EventPublisher, instruments *platformobservability.Instruments) orderports.Service {
	logger := instruments.Logger
	opts := []orderapp.Option{
		orderapp.WithCustomerDirectory(customers.NewDirectory(backends.Users)),
		orderapp.WithReadyBuffer(cfg.ReadyBuffer),
		orderapp.WithLogger(logger),
	}
	if publisher != nil {
		opts = append(opts, orderapp.WithPublisher(publisher))
	}
	return ordersobs.New(
		orderapp.NewService(backends.UnitOfWork, backends.Orders, backends.MenuStock, opts...),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
}
