package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/campus-canteen/internal/domains/orders/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/orders/domain"
)

// OrderLine is one requested dish in a placement payload.
type OrderLine struct {
	MenuItemID          int64  `json:"menuItem" binding:"required"`
	Quantity            int32  `json:"quantity" binding:"required,min=1,max=1000"`
	SpecialInstructions string `json:"specialInstructions,omitempty" binding:"max=500"`
}

// PlaceOrder is the inbound order payload.
type PlaceOrder struct {
	Items           []OrderLine `json:"items" binding:"dive"`
	OrderType       string      `json:"orderType,omitempty"`
	PaymentMethod   string      `json:"paymentMethod,omitempty"`
	ScheduledTime   *time.Time  `json:"scheduledTime,omitempty"`
	TableNumber     string      `json:"tableNumber,omitempty" binding:"max=16"`
	SpecialRequests string      `json:"specialRequests,omitempty" binding:"max=1000"`
}

// StatusUpdate moves an order through the kitchen workflow.
type StatusUpdate struct {
	Status          string     `json:"status" binding:"required"`
	ActualReadyTime *time.Time `json:"actualReadyTime,omitempty"`
}

type PaymentUpdate struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
}

type Feedback struct {
	Rating   int32  `json:"rating"`
	Feedback string `json:"feedback,omitempty" binding:"max=2000"`
}

// Customer is the public view of the person who placed the order.
type Customer struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	StudentID string `json:"studentId,omitempty"`
}

type LineItem struct {
	MenuItemID          int64           `json:"menuItem"`
	Name                string          `json:"name"`
	Quantity            int32           `json:"quantity"`
	Price               decimal.Decimal `json:"price"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	SpecialInstructions string          `json:"specialInstructions,omitempty"`
}

// Order is the HTTP representation of an order.
type Order struct {
	ID                 int64           `json:"id"`
	OrderNumber        string          `json:"orderNumber"`
	CustomerID         int64           `json:"customerId"`
	Customer           *Customer       `json:"customer,omitempty"`
	Items              []LineItem      `json:"items"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	Status             string          `json:"status"`
	OrderType          string          `json:"orderType"`
	PaymentStatus      string          `json:"paymentStatus"`
	PaymentMethod      string          `json:"paymentMethod"`
	ScheduledTime      *time.Time      `json:"scheduledTime,omitempty"`
	EstimatedReadyTime time.Time       `json:"estimatedReadyTime"`
	ActualReadyTime    *time.Time      `json:"actualReadyTime,omitempty"`
	TableNumber        string          `json:"tableNumber,omitempty"`
	SpecialRequests    string          `json:"specialRequests,omitempty"`
	Rating             *int32          `json:"rating,omitempty"`
	Feedback           string          `json:"feedback,omitempty"`
	QRCode             string          `json:"qrCode,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// ToPlaceOrderInput maps the payload into the application input.
func ToPlaceOrderInput(in PlaceOrder, idempotencyKey string) types.PlaceOrderInput {
	lines := make([]types.OrderLineInput, 0, len(in.Items))
	for _, line := range in.Items {
		lines = append(lines, types.OrderLineInput{
			MenuItemID:   line.MenuItemID,
			Quantity:     line.Quantity,
			Instructions: line.SpecialInstructions,
		})
	}
	return types.PlaceOrderInput{
		Type:            in.OrderType,
		PaymentMethod:   in.PaymentMethod,
		ScheduledFor:    in.ScheduledTime,
		TableNumber:     in.TableNumber,
		SpecialRequests: in.SpecialRequests,
		Items:           lines,
		IdempotencyKey:  idempotencyKey,
	}
}

// FromOrderView converts an order and its resolved customer.
func FromOrderView(view types.OrderView) Order {
	out := FromDomainOrder(view.Order)
	if c := view.Customer; c != nil {
		out.Customer = &Customer{
			ID:        c.ID,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Email:     c.Email,
			StudentID: c.StudentID,
		}
	}
	return out
}

func FromOrderViews(views []types.OrderView) []Order {
	out := make([]Order, 0, len(views))
	for _, v := range views {
		out = append(out, FromOrderView(v))
	}
	return out
}

func FromDomainOrder(o *domain.Order) Order {
	if o == nil {
		return Order{}
	}
	items := make([]LineItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, LineItem{
			MenuItemID:          item.MenuItemID,
			Name:                item.Name,
			Quantity:            item.Quantity,
			Price:               item.UnitPrice,
			Subtotal:            item.Subtotal(),
			SpecialInstructions: item.Instructions,
		})
	}
	return Order{
		ID:                 o.ID,
		OrderNumber:        o.OrderNumber,
		CustomerID:         o.CustomerID,
		Items:              items,
		TotalAmount:        o.TotalAmount,
		Status:             string(o.Status),
		OrderType:          string(o.Type),
		PaymentStatus:      string(o.PaymentStatus),
		PaymentMethod:      string(o.PaymentMethod),
		ScheduledTime:      o.ScheduledFor,
		EstimatedReadyTime: o.EstimatedReadyAt,
		ActualReadyTime:    o.ActualReadyAt,
		TableNumber:        o.TableNumber,
		SpecialRequests:    o.SpecialRequests,
		Rating:             o.Rating,
		Feedback:           o.Feedback,
		QRCode:             o.PickupCode,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}
