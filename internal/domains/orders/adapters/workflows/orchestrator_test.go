package workflows

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	catalogmemory "github.com/Apurer/campus-canteen/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/campus-canteen/internal/domains/catalog/domain"
	ordersmemory "github.com/Apurer/campus-canteen/internal/domains/orders/adapters/memory"
	"github.com/Apurer/campus-canteen/internal/domains/orders/application"
	"github.com/Apurer/campus-canteen/internal/domains/orders/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/orders/domain"
	orderworkflows "github.com/Apurer/campus-canteen/internal/platform/temporal/workflows/orders"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

var customer = auth.Principal{UserID: 4, Role: auth.RoleLecturer}

type stubRun struct {
	client.WorkflowRun
	view *types.OrderView
	err  error
}

func (r stubRun) Get(_ context.Context, valuePtr interface{}) error {
	if r.err != nil {
		return r.err
	}
	*(valuePtr.(*types.OrderView)) = *r.view
	return nil
}

type stubStarter struct {
	run     stubRun
	options client.StartWorkflowOptions
	input   orderworkflows.OrderPlacementWorkflowInput
}

func (s *stubStarter) ExecuteWorkflow(_ context.Context, options client.StartWorkflowOptions, _ interface{}, args ...interface{}) (client.WorkflowRun, error) {
	s.options = options
	s.input = args[0].(orderworkflows.OrderPlacementWorkflowInput)
	return s.run, nil
}

func (s *stubStarter) GetWorkflow(context.Context, string, string) client.WorkflowRun {
	return s.run
}

func TestInlinePlacement_DelegatesToService(t *testing.T) {
	menu := catalogmemory.NewRepository()
	orders := ordersmemory.NewRepository()
	item, err := catalogdomain.NewMenuItem("Rice & Curry", decimal.NewFromInt(300), catalogdomain.CategoryMainCourse)
	require.NoError(t, err)
	item, err = menu.Save(context.Background(), item)
	require.NoError(t, err)

	inline := NewInlinePlacement(application.NewService(ordersmemory.NewUnitOfWork(menu, orders, nil), orders, menu))
	view, err := inline.PlaceOrder(context.Background(), customer, types.PlaceOrderInput{
		Items: []types.OrderLineInput{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Equal(t, customer.UserID, view.Order.CustomerID)
}

func TestTemporalPlacement_StartsOnTaskQueue(t *testing.T) {
	starter := &stubStarter{run: stubRun{view: &types.OrderView{Order: &domain.Order{ID: 9, OrderNumber: "ORD000009"}}}}
	placement := &TemporalPlacement{client: starter, taskQueue: orderworkflows.OrderPlacementTaskQueue}

	view, err := placement.PlaceOrder(context.Background(), customer, types.PlaceOrderInput{IdempotencyKey: "abc"})
	require.NoError(t, err)
	require.Equal(t, "ORD000009", view.Order.OrderNumber)
	require.Equal(t, orderworkflows.OrderPlacementTaskQueue, starter.options.TaskQueue)
	require.Equal(t, customer, starter.input.Command.Caller)
	require.Equal(t, buildPlacementWorkflowID(customer, types.PlaceOrderInput{IdempotencyKey: "abc"}, ""), starter.options.ID)
}

func TestTemporalPlacement_RestoresBusinessErrors(t *testing.T) {
	failure := temporal.NewNonRetryableApplicationError("menu item not found: 42", "ItemNotFound", nil)
	starter := &stubStarter{run: stubRun{err: failure}}
	placement := &TemporalPlacement{client: starter, taskQueue: orderworkflows.OrderPlacementTaskQueue}

	_, err := placement.PlaceOrder(context.Background(), customer, types.PlaceOrderInput{})
	require.ErrorIs(t, err, application.ErrItemNotFound)
	require.Equal(t, "menu item not found: 42", err.Error())
}

func TestBuildPlacementWorkflowID_ScopesKeysByCustomer(t *testing.T) {
	in := types.PlaceOrderInput{IdempotencyKey: "same-key"}
	other := auth.Principal{UserID: 5, Role: auth.RoleStudent}

	require.Equal(t, buildPlacementWorkflowID(customer, in, "t1"), buildPlacementWorkflowID(customer, in, "t2"))
	require.NotEqual(t, buildPlacementWorkflowID(customer, in, "t1"), buildPlacementWorkflowID(other, in, "t1"))
	require.Equal(t, "order-placement-4-t1", buildPlacementWorkflowID(customer, types.PlaceOrderInput{}, "t1"))
}
