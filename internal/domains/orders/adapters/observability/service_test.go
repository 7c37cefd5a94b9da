package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Apurer/campus-canteen/internal/domains/orders/application"
	"github.com/Apurer/campus-canteen/internal/domains/orders/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/orders/domain"
	orderports "github.com/Apurer/campus-canteen/internal/domains/orders/ports"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

type stubService struct {
	orderports.Service
	placeErr error
}

func (s stubService) PlaceOrder(_ context.Context, caller auth.Principal, _ types.PlaceOrderInput) (*types.OrderView, error) {
	if s.placeErr != nil {
		return nil, s.placeErr
	}
	return &types.OrderView{Order: &domain.Order{
		ID:          7,
		OrderNumber: "ORD000007",
		CustomerID:  caller.UserID,
		Type:        domain.TypeTakeaway,
		TotalAmount: decimal.NewFromInt(850),
	}}, nil
}

func TestService_PlaceOrderRecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	svc := New(stubService{}, WithMeter(provider.Meter("test")))

	_, err := svc.PlaceOrder(context.Background(), auth.Principal{UserID: 4, Role: auth.RoleStudent}, types.PlaceOrderInput{})
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	names := map[string]bool{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			names[m.Name] = true
		}
	}
	require.True(t, names["orders.service.orders_placed"])
	require.True(t, names["orders.service.order_total"])
}

func TestService_RejectionsLogAtWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rejected := New(stubService{placeErr: application.ErrInsufficientQuantity}, WithLogger(logger))

	_, err := rejected.PlaceOrder(context.Background(), auth.Principal{UserID: 4, Role: auth.RoleStudent}, types.PlaceOrderInput{})
	require.ErrorIs(t, err, application.ErrInsufficientQuantity)
	require.Contains(t, buf.String(), "level=WARN")

	buf.Reset()
	broken := New(stubService{placeErr: errors.New("connection reset")}, WithLogger(logger))
	_, err = broken.PlaceOrder(context.Background(), auth.Principal{UserID: 4, Role: auth.RoleStudent}, types.PlaceOrderInput{})
	require.Error(t, err)
	require.Contains(t, buf.String(), "level=ERROR")
}
