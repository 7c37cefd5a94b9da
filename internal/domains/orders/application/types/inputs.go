package types

import (
	"time"

	"github.com/Apurer/campus-canteen/internal/domains/orders/domain"
)

// OrderLineInput is one requested dish.
type OrderLineInput struct {
	MenuItemID   int64
	Quantity     int32
	Instructions string
}

// PlaceOrderInput is the customer's order request. Enum fields arrive as raw strings.
type PlaceOrderInput struct {
	Type            string
	PaymentMethod   string
	ScheduledFor    *time.Time
	TableNumber     string
	SpecialRequests string
	Items           []OrderLineInput
	// IdempotencyKey deduplicates durable placements; inline placement ignores it.
	IdempotencyKey string
}

// Draft parses the raw request into a domain draft owned by customerID.
func (in PlaceOrderInput) Draft(customerID int64) (domain.Draft, error) {
	typ, err := domain.ParseType(in.Type)
	if err != nil {
		return domain.Draft{}, err
	}
	method, err := domain.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return domain.Draft{}, err
	}
	lines := make([]domain.DraftLine, 0, len(in.Items))
	for _, item := range in.Items {
		lines = append(lines, domain.DraftLine{
			MenuItemID:   item.MenuItemID,
			Quantity:     item.Quantity,
			Instructions: item.Instructions,
		})
	}
	return domain.Draft{
		CustomerID:      customerID,
		Type:            typ,
		PaymentMethod:   method,
		ScheduledFor:    in.ScheduledFor,
		TableNumber:     in.TableNumber,
		SpecialRequests: in.SpecialRequests,
		Lines:           lines,
	}, nil
}

// ListOrdersInput carries listing filters. Date is YYYY-MM-DD.
type ListOrdersInput struct {
	Status        string
	Type          string
	PaymentStatus string
	Date          string
	Page          int
	Limit         int
}

type UpdateStatusInput struct {
	OrderID int64
	Status  string
	ReadyAt *time.Time
}

type UpdatePaymentStatusInput struct {
	OrderID       int64
	PaymentStatus string
}

type FeedbackInput struct {
	OrderID  int64
	Rating   int32
	Feedback string
}

// AnalyticsInput bounds the report. Each date is YYYY-MM-DD or RFC 3339;
// the range applies only when both are present.
type AnalyticsInput struct {
	StartDate string
	EndDate   string
}
