package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/campus-canteen/internal/app/api"
	platformobservability "github.com/Apurer/campus-canteen/internal/platform/observability"
	orderactivities "github.com/Apurer/campus-canteen/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/campus-canteen/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "campus-canteen-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	backends, closeBackends := api.OpenBackends(ctx, cfg, logger)
	defer closeBackends()
	if !backends.Durable {
		logger.Error("worker requires POSTGRES_DSN; in-memory orders would be invisible to the API")
		closeBackends()
		os.Exit(1)
	}
	publisher, closePublisher := api.OpenPublisher(cfg, logger)
	defer closePublisher()

	// No publisher here: NotifyKitchen announces placements after the transaction commits.
	orderService := api.NewOrderService(cfg, backends, nil, instruments)
	activities := orderactivities.NewActivities(orderService, backends.Orders, publisher)

	temporalClient, err := api.DialTemporal(cfg, instruments, logger)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.OrderPlacementTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.OrderPlacementWorkflow, workflow.RegisterOptions{Name: orderworkflows.OrderPlacementWorkflowName})
	w.RegisterActivityWithOptions(activities.PlaceOrder, activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName})
	w.RegisterActivityWithOptions(activities.NotifyKitchen, activity.RegisterOptions{Name: orderactivities.NotifyKitchenActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.OrderPlacementTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
