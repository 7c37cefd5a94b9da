package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType names a kitchen-facing notification.
type EventType string

const (
	EventOrderPlaced          EventType = "orders.order.placed"
	EventOrderStatusChanged   EventType = "orders.order.status_changed"
	EventOrderCancelled       EventType = "orders.order.cancelled"
	EventPaymentStatusChanged EventType = "orders.order.payment_status_changed"
)

// Event is emitted after an order change has been committed.
type Event struct {
	Type          EventType       `json:"type"`
	OrderID       int64           `json:"orderId"`
	OrderNumber   string          `json:"orderNumber"`
	CustomerID    int64           `json:"customerId"`
	OrderType     Type            `json:"orderType"`
	Status        Status          `json:"status"`
	PreviousState string          `json:"previousState,omitempty"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Items         []EventLine     `json:"items,omitempty"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

type EventLine struct {
	MenuItemID   int64  `json:"menuItemId"`
	Name         string `json:"name"`
	Quantity     int32  `json:"quantity"`
	Instructions string `json:"instructions,omitempty"`
}

func OrderPlaced(o *Order) Event {
	e := newEvent(EventOrderPlaced, o)
	e.Items = eventLines(o)
	return e
}

func OrderStatusChanged(o *Order, from Status) Event {
	e := newEvent(EventOrderStatusChanged, o)
	e.PreviousState = string(from)
	return e
}

func OrderCancelled(o *Order, from Status) Event {
	e := newEvent(EventOrderCancelled, o)
	e.PreviousState = string(from)
	e.Items = eventLines(o)
	return e
}

func PaymentStatusChanged(o *Order, from PaymentStatus) Event {
	e := newEvent(EventPaymentStatusChanged, o)
	e.PreviousState = string(from)
	return e
}

func newEvent(t EventType, o *Order) Event {
	return Event{
		Type:          t,
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerID:    o.CustomerID,
		OrderType:     o.Type,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		TotalAmount:   o.TotalAmount,
		OccurredAt:    o.UpdatedAt,
	}
}

func eventLines(o *Order) []EventLine {
	lines := make([]EventLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, EventLine{
			MenuItemID:   item.MenuItemID,
			Name:         item.Name,
			Quantity:     item.Quantity,
			Instructions: item.Instructions,
		})
	}
	return lines
}
