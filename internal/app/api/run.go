package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	canteenserver "github.com/Apurer/campus-canteen/go"

	catalogapp "github.com/Apurer/campus-canteen/internal/domains/catalog/application"
	inventoryapp "github.com/Apurer/campus-canteen/internal/domains/inventory/application"
	orderworkflows "github.com/Apurer/campus-canteen/internal/domains/orders/adapters/workflows"
	orderports "github.com/Apurer/campus-canteen/internal/domains/orders/ports"
	usersobs "github.com/Apurer/campus-canteen/internal/domains/users/adapters/observability"
	userapp "github.com/Apurer/campus-canteen/internal/domains/users/application"
	platformobservability "github.com/Apurer/campus-canteen/internal/platform/observability"
)

const serviceName = "campus-canteen-api"

// Run boots the canteen HTTP API with observability, repositories, events, and workflows wired.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	backends, closeBackends := OpenBackends(ctx, cfg, logger)
	defer closeBackends()
	publisher, closePublisher := OpenPublisher(cfg, logger)
	defer closePublisher()

	userService := usersobs.New(
		userapp.NewService(backends.Users, backends.Sessions, userapp.WithSessionTTL(cfg.SessionTTL)),
		usersobs.WithLogger(logger),
		usersobs.WithTracer(instruments.Tracer("internal.users.application")),
		usersobs.WithMeter(instruments.Meter("internal.users.application")),
	)
	orderService := NewOrderService(cfg, backends, publisher, instruments)

	var placement orderports.PlacementOrchestrator = orderworkflows.NewInlinePlacement(orderService)
	if !backends.Durable {
		logger.Warn("in-memory repositories are process local, placing orders inline")
	} else if temporalClient, err := DialTemporal(cfg, instruments, logger); err != nil {
		logger.Warn("Temporal workflows unavailable, placing orders inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		placement = orderworkflows.NewTemporalPlacement(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	handlers := canteenserver.ApiHandleFunctions{
		AuthAPI:      canteenserver.NewAuthAPI(userService),
		MenuAPI:      canteenserver.NewMenuAPI(catalogapp.NewService(backends.Menu)),
		OrdersAPI:    canteenserver.NewOrdersAPI(orderService, placement),
		InventoryAPI: canteenserver.NewInventoryAPI(inventoryapp.NewService(backends.Inventory)),
		UsersAPI:     canteenserver.NewUsersAPI(userService),
	}

	engine := gin.Default()
	engine.Use(otelgin.Middleware(serviceName))
	router := canteenserver.NewRouterWithGinEngine(engine, handlers, userService, logger)
	addr := cfg.Addr()
	logger.Info("Canteen API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("Canteen API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}
