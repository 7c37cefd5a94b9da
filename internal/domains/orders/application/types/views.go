package types

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/campus-canteen/internal/domains/orders/domain"
	"github.com/Apurer/campus-canteen/internal/shared/projection"
)

// Customer is the display view of the person who placed an order.
type Customer struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	StudentID string
}

// OrderView is an order together with the customer details resolved for display.
type OrderView struct {
	Order    *domain.Order
	Customer *Customer
}

type OrderPage = projection.Page[OrderView]

type DailySales struct {
	Date       string          `json:"date"`
	TotalSales decimal.Decimal `json:"totalSales"`
	OrderCount int64           `json:"orderCount"`
}

type PopularItem struct {
	MenuItemID    int64           `json:"menuItemId"`
	Name          string          `json:"name"`
	TotalQuantity int64           `json:"totalQuantity"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

type StatusCount struct {
	Status domain.Status `json:"status"`
	Count  int64         `json:"count"`
}

type PaymentMethodRevenue struct {
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	TotalRevenue  decimal.Decimal      `json:"totalRevenue"`
	Count         int64                `json:"count"`
}

// AnalyticsReport aggregates orders over an optional window.
type AnalyticsReport struct {
	From                 *time.Time             `json:"from,omitempty"`
	To                   *time.Time             `json:"to,omitempty"`
	DailySales           []DailySales           `json:"dailySales"`
	PopularItems         []PopularItem          `json:"popularItems"`
	StatusDistribution   []StatusCount          `json:"statusDistribution"`
	PaymentMethodRevenue []PaymentMethodRevenue `json:"paymentMethodRevenue"`
	GeneratedAt          time.Time              `json:"generatedAt"`
}
