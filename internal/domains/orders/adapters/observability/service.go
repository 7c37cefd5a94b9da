package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/campus-canteen/internal/domains/orders/application"
	"github.com/Apurer/campus-canteen/internal/domains/orders/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/orders/domain"
	orderports "github.com/Apurer/campus-canteen/internal/domains/orders/ports"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

const tracerName = "github.com/Apurer/campus-canteen/internal/domains/orders/adapters/observability/service"

// Service decorates the order service with tracing, logging, and metrics.
type Service struct {
	inner   orderports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core order service.
func New(inner orderports.Service, opts ...Option) orderports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) PlaceOrder(ctx context.Context, caller auth.Principal, input types.PlaceOrderInput) (*types.OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder", trace.WithAttributes(
		attribute.Int64("order.customer_id", caller.UserID),
		attribute.Int("order.line_count", len(input.Items)),
		attribute.String("order.type", input.Type),
	))
	defer span.End()

	s.logInfo(ctx, "placing order", slog.Int64("customer_id", caller.UserID), slog.Int("lines", len(input.Items)))
	result, err := s.inner.PlaceOrder(ctx, caller, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.Int64("customer_id", caller.UserID))
	}
	order := result.Order
	span.SetAttributes(attribute.Int64("order.id", order.ID), attribute.String("order.number", order.OrderNumber))
	s.metrics.recordPlaced(ctx, order)
	s.logInfo(ctx, "order placed",
		slog.Int64("order.id", order.ID),
		slog.String("order.number", order.OrderNumber),
		slog.String("total", order.TotalAmount.StringFixed(2)),
	)
	return result, nil
}

func (s *Service) ListMyOrders(ctx context.Context, caller auth.Principal, input types.ListOrdersInput) (*types.OrderPage, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListMyOrders", trace.WithAttributes(attribute.Int64("order.customer_id", caller.UserID)))
	defer span.End()

	result, err := s.inner.ListMyOrders(ctx, caller, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list own orders", slog.Int64("customer_id", caller.UserID))
	}
	span.SetAttributes(attribute.Int64("order.total_count", result.Pagination.Total))
	return result, nil
}

func (s *Service) ListOrders(ctx context.Context, caller auth.Principal, input types.ListOrdersInput) (*types.OrderPage, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListOrders", trace.WithAttributes(
		attribute.String("order.filter.status", input.Status),
		attribute.String("order.filter.date", input.Date),
	))
	defer span.End()

	result, err := s.inner.ListOrders(ctx, caller, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int64("order.total_count", result.Pagination.Total))
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, caller auth.Principal, id int64) (*types.OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, caller, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.Int64("order.id", id))
	}
	return result, nil
}

func (s *Service) UpdateStatus(ctx context.Context, caller auth.Principal, input types.UpdateStatusInput) (*types.OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateStatus", trace.WithAttributes(
		attribute.Int64("order.id", input.OrderID),
		attribute.String("order.status", input.Status),
	))
	defer span.End()

	result, err := s.inner.UpdateStatus(ctx, caller, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status",
			slog.Int64("order.id", input.OrderID), slog.String("status", input.Status))
	}
	if result.Order.Status == domain.StatusCancelled {
		s.metrics.recordCancelled(ctx, caller.Role)
	} else {
		s.metrics.recordTransition(ctx, result.Order.Status)
	}
	s.logInfo(ctx, "order status updated",
		slog.Int64("order.id", input.OrderID),
		slog.String("status", string(result.Order.Status)),
		slog.Int64("by", caller.UserID),
	)
	return result, nil
}

func (s *Service) CancelOrder(ctx context.Context, caller auth.Principal, id int64) (*types.OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CancelOrder", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	result, err := s.inner.CancelOrder(ctx, caller, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to cancel order", slog.Int64("order.id", id))
	}
	s.metrics.recordCancelled(ctx, caller.Role)
	s.logInfo(ctx, "order cancelled", slog.Int64("order.id", id), slog.Int64("by", caller.UserID))
	return result, nil
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, caller auth.Principal, input types.UpdatePaymentStatusInput) (*types.OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdatePaymentStatus", trace.WithAttributes(
		attribute.Int64("order.id", input.OrderID),
		attribute.String("order.payment_status", input.PaymentStatus),
	))
	defer span.End()

	result, err := s.inner.UpdatePaymentStatus(ctx, caller, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update payment status", slog.Int64("order.id", input.OrderID))
	}
	s.logInfo(ctx, "payment status updated",
		slog.Int64("order.id", input.OrderID),
		slog.String("payment_status", string(result.Order.PaymentStatus)),
	)
	return result, nil
}

func (s *Service) AddFeedback(ctx context.Context, caller auth.Principal, input types.FeedbackInput) (*types.OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.AddFeedback", trace.WithAttributes(
		attribute.Int64("order.id", input.OrderID),
		attribute.Int("order.rating", int(input.Rating)),
	))
	defer span.End()

	result, err := s.inner.AddFeedback(ctx, caller, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add feedback", slog.Int64("order.id", input.OrderID))
	}
	return result, nil
}

func (s *Service) Analytics(ctx context.Context, caller auth.Principal, input types.AnalyticsInput) (*types.AnalyticsReport, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Analytics", trace.WithAttributes(
		attribute.String("analytics.start", input.StartDate),
		attribute.String("analytics.end", input.EndDate),
	))
	defer span.End()

	result, err := s.inner.Analytics(ctx, caller, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to build analytics")
	}
	span.SetAttributes(attribute.Int("analytics.days", len(result.DailySales)))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

// logError drops to warn for rejections the caller can fix.
func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	level := slog.LevelError
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		if isRejection(err) {
			level = slog.LevelWarn
		}
	}
	s.logger.LogAttrs(ctx, level, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func isRejection(err error) bool {
	for _, target := range []error{
		application.ErrInvalidInput,
		application.ErrInvalidState,
		application.ErrItemNotFound,
		application.ErrItemUnavailable,
		application.ErrInsufficientQuantity,
		orderports.ErrNotFound,
		auth.ErrAccessDenied,
		auth.ErrUnauthenticated,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type serviceMetrics struct {
	ordersPlaced      metric.Int64Counter
	ordersCancelled   metric.Int64Counter
	statusTransitions metric.Int64Counter
	orderTotal        metric.Float64Histogram
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	placed, _ := m.Int64Counter("orders.service.orders_placed", metric.WithDescription("Number of orders placed"))
	cancelled, _ := m.Int64Counter("orders.service.orders_cancelled", metric.WithDescription("Number of orders cancelled"))
	transitions, _ := m.Int64Counter("orders.service.status_transitions", metric.WithDescription("Number of forward status changes"))
	total, _ := m.Float64Histogram("orders.service.order_total", metric.WithDescription("Order total at placement"), metric.WithUnit("LKR"))
	return serviceMetrics{ordersPlaced: placed, ordersCancelled: cancelled, statusTransitions: transitions, orderTotal: total}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, order *domain.Order) {
	typeAttr := attribute.String("order.type", string(order.Type))
	addCounter(ctx, m.ordersPlaced, 1, typeAttr)
	if m.orderTotal != nil {
		m.orderTotal.Record(ctx, order.TotalAmount.InexactFloat64(), metric.WithAttributes(typeAttr))
	}
}

func (m serviceMetrics) recordCancelled(ctx context.Context, by auth.Role) {
	addCounter(ctx, m.ordersCancelled, 1, attribute.String("cancelled_by", string(by)))
}

func (m serviceMetrics) recordTransition(ctx context.Context, to domain.Status) {
	addCounter(ctx, m.statusTransitions, 1, attribute.String("order.status", string(to)))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ orderports.Service = (*Service)(nil)
