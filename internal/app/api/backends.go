package api

import (
	"context"
	"errors"
	"log/slog"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	cachedmenu "github.com/Apurer/campus-canteen/internal/domains/catalog/adapters/cache"
	catalogmemory "github.com/Apurer/campus-canteen/internal/domains/catalog/adapters/memory"
	catalogpostgres "github.com/Apurer/campus-canteen/internal/domains/catalog/adapters/persistence/postgres"
	catalogports "github.com/Apurer/campus-canteen/internal/domains/catalog/ports"
	inventorymemory "github.com/Apurer/campus-canteen/internal/domains/inventory/adapters/memory"
	inventorypostgres "github.com/Apurer/campus-canteen/internal/domains/inventory/adapters/persistence/postgres"
	inventoryports "github.com/Apurer/campus-canteen/internal/domains/inventory/ports"
	ordersmemory "github.com/Apurer/campus-canteen/internal/domains/orders/adapters/memory"
	"github.com/Apurer/campus-canteen/internal/domains/orders/adapters/messaging"
	orderspostgres "github.com/Apurer/campus-canteen/internal/domains/orders/adapters/persistence/postgres"
	orderports "github.com/Apurer/campus-canteen/internal/domains/orders/ports"
	usermemory "github.com/Apurer/campus-canteen/internal/domains/users/adapters/memory"
	userpostgres "github.com/Apurer/campus-canteen/internal/domains/users/adapters/persistence/postgres"
	userports "github.com/Apurer/campus-canteen/internal/domains/users/ports"
	platformkafka "github.com/Apurer/campus-canteen/internal/platform/kafka"
	"github.com/Apurer/campus-canteen/internal/platform/migrations"
	platformobservability "github.com/Apurer/campus-canteen/internal/platform/observability"
	platformpostgres "github.com/Apurer/campus-canteen/internal/platform/postgres"
	platformrabbitmq "github.com/Apurer/campus-canteen/internal/platform/rabbitmq"
	platformredis "github.com/Apurer/campus-canteen/internal/platform/redis"
)

// Backends are the repositories every process builds its services from.
type Backends struct {
	Menu       catalogports.Repository
	MenuStock  orderports.MenuStock
	Orders     orderports.Repository
	UnitOfWork orderports.UnitOfWork
	Users      userports.Repository
	Sessions   userports.SessionStore
	Inventory  inventoryports.Repository
	Durable    bool
}

// OpenBackends connects PostgreSQL and Redis when configured. A missing or unreachable
// database falls back to in-memory repositories; a missing Redis leaves the menu uncached.
func OpenBackends(ctx context.Context, cfg Config, logger *slog.Logger) (*Backends, func()) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if db := connectPostgres(ctx, cfg, logger); db != nil {
		if sqlDB, err := db.DB(); err == nil {
			cleanups = append(cleanups, func() { _ = sqlDB.Close() })
		}
		menu := catalogpostgres.NewRepository(db)
		var cached catalogports.Repository = menu
		var listener orderports.StockListener
		if menuCache := openMenuCache(ctx, cfg, menu, logger, &cleanups); menuCache != nil {
			cached = menuCache
			listener = menuCache
		}
		b := &Backends{
			Menu:       cached,
			MenuStock:  menu,
			Orders:     orderspostgres.NewRepository(db),
			UnitOfWork: orderspostgres.NewUnitOfWork(db, listener),
			Users:      userpostgres.NewRepository(db),
			Sessions:   userpostgres.NewSessionStore(db),
			Inventory:  inventorypostgres.NewRepository(db),
			Durable:    true,
		}
		logger.Info("repositories configured with postgres")
		return b, cleanup
	}

	menu := catalogmemory.NewRepository()
	orders := ordersmemory.NewRepository()
	var cached catalogports.Repository = menu
	var listener orderports.StockListener
	if menuCache := openMenuCache(ctx, cfg, menu, logger, &cleanups); menuCache != nil {
		cached = menuCache
		listener = menuCache
	}
	b := &Backends{
		Menu:       cached,
		MenuStock:  menu,
		Orders:     orders,
		UnitOfWork: ordersmemory.NewUnitOfWork(menu, orders, listener),
		Users:      usermemory.NewRepository(),
		Sessions:   usermemory.NewSessionStore(),
		Inventory:  inventorymemory.NewRepository(),
	}
	return b, cleanup
}

func connectPostgres(ctx context.Context, cfg Config, logger *slog.Logger) *gorm.DB {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return nil
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to in-memory repositories", slog.String("error", err.Error()))
		return nil
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("failed to migrate postgres schema, falling back to in-memory repositories", slog.String("error", err.Error()))
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		return nil
	}
	return db
}

func openMenuCache(ctx context.Context, cfg Config, inner catalogports.Repository, logger *slog.Logger, cleanups *[]func()) *cachedmenu.Repository {
	if cfg.RedisAddr == "" {
		return nil
	}
	rdb, err := platformredis.Connect(ctx, platformredis.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Warn("redis unavailable, menu reads are uncached", slog.String("error", err.Error()))
		return nil
	}
	*cleanups = append(*cleanups, func() { _ = rdb.Close() })
	logger.Info("menu cache enabled", slog.String("addr", cfg.RedisAddr), slog.Duration("ttl", cfg.MenuCacheTTL))
	return cachedmenu.NewRepository(inner, rdb, cachedmenu.WithTTL(cfg.MenuCacheTTL), cachedmenu.WithLogger(logger))
}

// OpenPublisher selects the kitchen event transport named by EVENTS_DRIVER.
// A broker that cannot be reached degrades to dropping events with a warning.
func OpenPublisher(cfg Config, logger *slog.Logger) (orderports.EventPublisher, func()) {
	switch cfg.EventsDriver {
	case EventsRabbitMQ:
		conn, err := platformrabbitmq.Connect(cfg.RabbitMQURL)
		if err != nil {
			logger.Warn("rabbitmq unavailable, kitchen events disabled", slog.String("error", err.Error()))
			return messaging.Noop{}, func() {}
		}
		logger.Info("kitchen events published to rabbitmq", slog.String("exchange", platformrabbitmq.OrdersExchange))
		return messaging.NewRabbitMQPublisher(conn.Channel, platformrabbitmq.OrdersExchange), func() { _ = conn.Close() }
	case EventsKafka:
		producer, err := platformkafka.NewSyncProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.Warn("kafka unavailable, kitchen events disabled", slog.String("error", err.Error()))
			return messaging.Noop{}, func() {}
		}
		publisher := messaging.NewKafkaPublisher(producer, cfg.KafkaTopic)
		logger.Info("kitchen events published to kafka", slog.String("topic", cfg.KafkaTopic))
		return publisher, func() { _ = publisher.Close() }
	default:
		return messaging.Noop{}, func() {}
	}
}

// DialTemporal connects a traced Temporal client unless TEMPORAL_DISABLED is set.
func DialTemporal(cfg Config, instruments *platformobservability.Instruments, logger *slog.Logger) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer("temporal-client"),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}
