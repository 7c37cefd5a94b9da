package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/campus-canteen/internal/domains/orders/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/campus-canteen/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/campus-canteen/internal/platform/temporal/workflows/orders"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

var (
	_ ports.PlacementOrchestrator = (*TemporalPlacement)(nil)
	_ ports.PlacementOrchestrator = (*InlinePlacement)(nil)
)

// workflowStarter is the part of client.Client the orchestrator uses.
type workflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
	GetWorkflow(ctx context.Context, workflowID string, runID string) client.WorkflowRun
}

// TemporalPlacement starts order placement workflows on a Temporal cluster and waits for the result.
type TemporalPlacement struct {
	client    workflowStarter
	taskQueue string
}

func NewTemporalPlacement(c client.Client) *TemporalPlacement {
	return &TemporalPlacement{client: c, taskQueue: orderworkflows.OrderPlacementTaskQueue}
}

func (o *TemporalPlacement) PlaceOrder(ctx context.Context, caller auth.Principal, input types.PlaceOrderInput) (*types.OrderView, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal order placement not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildPlacementWorkflowID(caller, input, traceComponent)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.OrderPlacementWorkflow,
		orderworkflows.OrderPlacementWorkflowInput{
			Command: orderactivities.PlaceOrderCommand{Caller: caller, Input: input},
			TraceID: traceComponent,
		},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) && strings.TrimSpace(input.IdempotencyKey) != "" {
			return awaitView(ctx, o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId))
		}
		return nil, err
	}
	return awaitView(ctx, run)
}

func awaitView(ctx context.Context, run client.WorkflowRun) (*types.OrderView, error) {
	var view types.OrderView
	if err := run.Get(ctx, &view); err != nil {
		return nil, orderactivities.FromApplicationError(err)
	}
	return &view, nil
}

// InlinePlacement calls the order service directly. It is the fallback when Temporal is unavailable.
type InlinePlacement struct {
	service ports.Service
}

func NewInlinePlacement(service ports.Service) *InlinePlacement {
	return &InlinePlacement{service: service}
}

func (o *InlinePlacement) PlaceOrder(ctx context.Context, caller auth.Principal, input types.PlaceOrderInput) (*types.OrderView, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline order placement not configured")
	}
	return o.service.PlaceOrder(ctx, caller, input)
}

// Idempotency keys are scoped per customer so two customers cannot collide on the same key.
func buildPlacementWorkflowID(caller auth.Principal, input types.PlaceOrderInput, traceComponent string) string {
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" {
		return fmt.Sprintf("order-placement-idem-%s", hashIdempotencyKey(fmt.Sprintf("%d:%s", caller.UserID, key)))
	}
	return fmt.Sprintf("order-placement-%d-%s", caller.UserID, traceComponent)
}

func hashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
