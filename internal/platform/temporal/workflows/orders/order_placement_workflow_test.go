package orders

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	catalogmemory "github.com/Apurer/campus-canteen/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/campus-canteen/internal/domains/catalog/domain"
	ordersmemory "github.com/Apurer/campus-canteen/internal/domains/orders/adapters/memory"
	"github.com/Apurer/campus-canteen/internal/domains/orders/application"
	"github.com/Apurer/campus-canteen/internal/domains/orders/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/orders/domain"
	orderactivities "github.com/Apurer/campus-canteen/internal/platform/temporal/activities/orders"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

var student = auth.Principal{UserID: 21, Role: auth.RoleStudent}

type kitchenPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *kitchenPublisher) Publish(_ context.Context, e domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *kitchenPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type harness struct {
	env       *testsuite.TestWorkflowEnvironment
	menu      *catalogmemory.Repository
	publisher *kitchenPublisher
}

func newHarness(t *testing.T, publishErr error) *harness {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	h := &harness{
		env:       suite.NewTestWorkflowEnvironment(),
		menu:      catalogmemory.NewRepository(),
		publisher: &kitchenPublisher{err: publishErr},
	}
	orders := ordersmemory.NewRepository()
	svc := application.NewService(ordersmemory.NewUnitOfWork(h.menu, orders, nil), orders, h.menu)
	acts := orderactivities.NewActivities(svc, orders, h.publisher)

	h.env.RegisterWorkflowWithOptions(OrderPlacementWorkflow, workflow.RegisterOptions{Name: OrderPlacementWorkflowName})
	h.env.RegisterActivityWithOptions(acts.PlaceOrder, activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName})
	h.env.RegisterActivityWithOptions(acts.NotifyKitchen, activity.RegisterOptions{Name: orderactivities.NotifyKitchenActivityName})
	return h
}

func (h *harness) seed(t *testing.T, remaining int32) *catalogdomain.MenuItem {
	t.Helper()
	item, err := catalogdomain.NewMenuItem("Kottu", decimal.NewFromInt(450), catalogdomain.CategoryMainCourse)
	require.NoError(t, err)
	item.RemainingQuantity = remaining
	saved, err := h.menu.Save(context.Background(), item)
	require.NoError(t, err)
	return saved
}

func placement(items ...types.OrderLineInput) OrderPlacementWorkflowInput {
	return OrderPlacementWorkflowInput{
		Command: orderactivities.PlaceOrderCommand{
			Caller: student,
			Input:  types.PlaceOrderInput{Type: "takeaway", Items: items},
		},
		TraceID: "trace-1",
	}
}

func TestOrderPlacementWorkflow_PlacesAndNotifies(t *testing.T) {
	h := newHarness(t, nil)
	item := h.seed(t, 10)

	h.env.ExecuteWorkflow(OrderPlacementWorkflow, placement(types.OrderLineInput{MenuItemID: item.ID, Quantity: 2}))

	require.True(t, h.env.IsWorkflowCompleted())
	require.NoError(t, h.env.GetWorkflowError())
	var view types.OrderView
	require.NoError(t, h.env.GetWorkflowResult(&view))
	require.NotNil(t, view.Order)
	require.Equal(t, "ORD000001", view.Order.OrderNumber)
	require.True(t, decimal.NewFromInt(900).Equal(view.Order.TotalAmount))

	require.Equal(t, 1, h.publisher.count())
	require.Equal(t, domain.EventOrderPlaced, h.publisher.events[0].Type)

	stored, err := h.menu.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	require.Equal(t, int32(8), stored.RemainingQuantity)
}

func TestOrderPlacementWorkflow_RejectionIsNotRetried(t *testing.T) {
	h := newHarness(t, nil)
	item := h.seed(t, 1)

	h.env.ExecuteWorkflow(OrderPlacementWorkflow, placement(types.OrderLineInput{MenuItemID: item.ID, Quantity: 3}))

	require.True(t, h.env.IsWorkflowCompleted())
	err := h.env.GetWorkflowError()
	require.Error(t, err)
	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, "InsufficientQuantity", appErr.Type())
	require.ErrorIs(t, orderactivities.FromApplicationError(err), application.ErrInsufficientQuantity)
	require.Zero(t, h.publisher.count())

	stored, err := h.menu.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	require.Equal(t, int32(1), stored.RemainingQuantity)
}

func TestOrderPlacementWorkflow_NotifyFailureKeepsOrder(t *testing.T) {
	h := newHarness(t, errors.New("broker unreachable"))
	item := h.seed(t, 5)

	h.env.ExecuteWorkflow(OrderPlacementWorkflow, placement(types.OrderLineInput{MenuItemID: item.ID, Quantity: 1}))

	require.True(t, h.env.IsWorkflowCompleted())
	require.NoError(t, h.env.GetWorkflowError())
	var view types.OrderView
	require.NoError(t, h.env.GetWorkflowResult(&view))
	require.NotNil(t, view.Order)
	require.GreaterOrEqual(t, h.publisher.count(), 1)
}
