package application

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/Apurer/campus-canteen/internal/domains/orders/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/orders/domain"
	"github.com/Apurer/campus-canteen/internal/domains/orders/ports"
)

const (
	DefaultMyOrdersLimit  = 20
	DefaultAllOrdersLimit = 50
	PopularItemsLimit     = 10
)

// Service orchestrates order use cases. Writes go through the unit of work;
// reads use the plain repositories.
type Service struct {
	uow         ports.UnitOfWork
	orders      ports.Repository
	menu        ports.MenuStock
	publisher   ports.EventPublisher
	customers   ports.CustomerDirectory
	logger      *slog.Logger
	clock       func() time.Time
	location    *time.Location
	readyBuffer time.Duration
}

type Option func(*Service)

// WithPublisher sends committed changes to the kitchen.
func WithPublisher(p ports.EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithCustomerDirectory(d ports.CustomerDirectory) Option {
	return func(s *Service) {
		s.customers = d
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLocation sets the zone used for calendar-day filters and daily sales buckets.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithReadyBuffer(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.readyBuffer = d
		}
	}
}

func NewService(uow ports.UnitOfWork, orders ports.Repository, menu ports.MenuStock, opts ...Option) *Service {
	s := &Service{
		uow:         uow,
		orders:      orders,
		menu:        menu,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:       time.Now,
		location:    time.Local,
		readyBuffer: domain.DefaultReadyBuffer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) now() time.Time {
	return s.clock().In(s.location)
}

// publish never fails the caller: the change is already committed.
func (s *Service) publish(ctx context.Context, event domain.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "order event not delivered",
			slog.String("event.type", string(event.Type)),
			slog.Int64("order.id", event.OrderID),
			slog.String("error", err.Error()))
	}
}

func (s *Service) view(ctx context.Context, order *domain.Order) *types.OrderView {
	views := s.views(ctx, []*domain.Order{order})
	return &views[0]
}

func (s *Service) views(ctx context.Context, orders []*domain.Order) []types.OrderView {
	out := make([]types.OrderView, 0, len(orders))
	var customers map[int64]types.Customer
	if s.customers != nil && len(orders) > 0 {
		ids := make([]int64, 0, len(orders))
		seen := map[int64]bool{}
		for _, o := range orders {
			if !seen[o.CustomerID] {
				seen[o.CustomerID] = true
				ids = append(ids, o.CustomerID)
			}
		}
		found, err := s.customers.LookupCustomers(ctx, ids)
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "customer lookup failed", slog.String("error", err.Error()))
		}
		customers = found
	}
	for _, o := range orders {
		view := types.OrderView{Order: o}
		if c, ok := customers[o.CustomerID]; ok {
			c := c
			view.Customer = &c
		}
		out = append(out, view)
	}
	return out
}

var _ ports.Service = (*Service)(nil)
