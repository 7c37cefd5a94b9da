package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderNumberPrefix = "ORD"
	PickupCodePrefix  = "QR"

	// DefaultReadyBuffer is added on top of the slowest dish when estimating readiness.
	DefaultReadyBuffer = 10 * time.Minute

	MinRating int32 = 1
	MaxRating int32 = 5

	// MaxItemQuantity bounds the units of one menu item in a single order, summed across lines.
	MaxItemQuantity int32 = 1000
)

var (
	ErrInvalidCustomer      = errors.New("customer id must be greater than zero")
	ErrNoItems              = errors.New("order must contain at least one item")
	ErrInvalidMenuItem      = errors.New("menu item id must be greater than zero")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrNegativeUnitPrice    = errors.New("unit price must not be negative")
	ErrInvalidStatus        = errors.New("order status is invalid")
	ErrInvalidType          = errors.New("order type is invalid")
	ErrInvalidPaymentStatus = errors.New("payment status is invalid")
	ErrInvalidPaymentMethod = errors.New("payment method is invalid")
	ErrMissingSchedule      = errors.New("pre-orders require a scheduled time")
	ErrTotalMismatch        = errors.New("total amount does not match line items")
	ErrInvalidRating        = errors.New("rating must be between 1 and 5")
	ErrQuantityTooLarge     = fmt.Errorf("%w and at most %d per menu item", ErrInvalidQuantity, MaxItemQuantity)

	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotCancellable    = errors.New("cannot cancel order that is being prepared or ready")
	ErrTerminal          = errors.New("order is already closed")
	ErrFeedbackNotOpen   = errors.New("can only rate completed orders")
)

// LineItem is one dish on an order. Name and UnitPrice are captured when the order is placed.
type LineItem struct {
	MenuItemID   int64
	Name         string
	Quantity     int32
	UnitPrice    decimal.Decimal
	Instructions string
}

func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt32(l.Quantity))
}

// Draft is what a customer asks for before stock is reserved.
type Draft struct {
	CustomerID      int64
	Type            Type
	PaymentMethod   PaymentMethod
	ScheduledFor    *time.Time
	TableNumber     string
	SpecialRequests string
	Lines           []DraftLine
}

type DraftLine struct {
	MenuItemID   int64
	Quantity     int32
	Instructions string
}

// Validate checks the shape of the request without touching stock.
func (d Draft) Validate() error {
	if d.CustomerID <= 0 {
		return ErrInvalidCustomer
	}
	if len(d.Lines) == 0 {
		return ErrNoItems
	}
	for i, line := range d.Lines {
		if line.MenuItemID <= 0 {
			return fmt.Errorf("item %d: %w", i+1, ErrInvalidMenuItem)
		}
		if line.Quantity < 1 {
			return fmt.Errorf("item %d: %w", i+1, ErrInvalidQuantity)
		}
		if line.Quantity > MaxItemQuantity {
			return fmt.Errorf("item %d: %w", i+1, ErrQuantityTooLarge)
		}
	}
	for id, total := range d.totals() {
		if total > int64(MaxItemQuantity) {
			return fmt.Errorf("menu item %d: %w", id, ErrQuantityTooLarge)
		}
	}
	if !isValidType(d.Type) {
		return ErrInvalidType
	}
	if !isValidPaymentMethod(d.PaymentMethod) {
		return ErrInvalidPaymentMethod
	}
	if d.Type == TypePreOrder && d.ScheduledFor == nil {
		return ErrMissingSchedule
	}
	return nil
}

// Quantities sums requested units per menu item. Sums that do not fit an int32 saturate,
// so they can never pass a stock check; Validate rejects them earlier.
func (d Draft) Quantities() map[int64]int32 {
	totals := d.totals()
	out := make(map[int64]int32, len(totals))
	for id, total := range totals {
		if total > math.MaxInt32 {
			total = math.MaxInt32
		}
		out[id] = int32(total)
	}
	return out
}

func (d Draft) totals() map[int64]int64 {
	out := make(map[int64]int64, len(d.Lines))
	for _, line := range d.Lines {
		out[line.MenuItemID] += int64(line.Quantity)
	}
	return out
}

// Order is the canteen order aggregate.
type Order struct {
	ID               int64
	OrderNumber      string
	CustomerID       int64
	Items            []LineItem
	TotalAmount      decimal.Decimal
	Status           Status
	Type             Type
	PaymentStatus    PaymentStatus
	PaymentMethod    PaymentMethod
	ScheduledFor     *time.Time
	EstimatedReadyAt time.Time
	ActualReadyAt    *time.Time
	TableNumber      string
	SpecialRequests  string
	Rating           *int32
	Feedback         string
	PickupCode       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewOrder builds a pending order from a validated draft and the priced lines.
// The total is computed here and never again.
func NewOrder(draft Draft, items []LineItem, sequence int64, estimatedReadyAt, now time.Time) (*Order, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	order := &Order{
		OrderNumber:      FormatOrderNumber(sequence),
		CustomerID:       draft.CustomerID,
		Items:            append([]LineItem(nil), items...),
		TotalAmount:      sumLines(items),
		Status:           StatusPending,
		Type:             draft.Type,
		PaymentStatus:    PaymentPending,
		PaymentMethod:    draft.PaymentMethod,
		ScheduledFor:     copyTime(draft.ScheduledFor),
		EstimatedReadyAt: estimatedReadyAt,
		TableNumber:      strings.TrimSpace(draft.TableNumber),
		SpecialRequests:  strings.TrimSpace(draft.SpecialRequests),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if order.Type == TypeTakeaway {
		order.PickupCode = PickupCode(order.OrderNumber)
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// FormatOrderNumber renders a sequence value as ORD000042.
func FormatOrderNumber(sequence int64) string {
	return fmt.Sprintf("%s%06d", OrderNumberPrefix, sequence)
}

// PickupCode derives the takeaway collection code from the order number.
func PickupCode(orderNumber string) string {
	return PickupCodePrefix + orderNumber
}

// EstimateReadyAt returns now plus the slowest dish plus the buffer.
func EstimateReadyAt(now time.Time, preparationMinutes []int32, buffer time.Duration) time.Time {
	var slowest int32
	for _, m := range preparationMinutes {
		if m > slowest {
			slowest = m
		}
	}
	return now.Add(time.Duration(slowest)*time.Minute + buffer)
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if o.CustomerID <= 0 {
		return ErrInvalidCustomer
	}
	if len(o.Items) == 0 {
		return ErrNoItems
	}
	for _, item := range o.Items {
		if item.MenuItemID <= 0 {
			return ErrInvalidMenuItem
		}
		if item.Quantity < 1 {
			return ErrInvalidQuantity
		}
		if item.UnitPrice.IsNegative() {
			return ErrNegativeUnitPrice
		}
	}
	if !o.TotalAmount.Equal(sumLines(o.Items)) {
		return ErrTotalMismatch
	}
	if !o.Status.Valid() {
		return ErrInvalidStatus
	}
	if !isValidType(o.Type) {
		return ErrInvalidType
	}
	if !isValidPaymentStatus(o.PaymentStatus) {
		return ErrInvalidPaymentStatus
	}
	if !isValidPaymentMethod(o.PaymentMethod) {
		return ErrInvalidPaymentMethod
	}
	if o.Rating != nil && (*o.Rating < MinRating || *o.Rating > MaxRating) {
		return ErrInvalidRating
	}
	return nil
}

// OwnedBy reports whether userID placed the order.
func (o *Order) OwnedBy(userID int64) bool {
	return o.CustomerID == userID
}

// Advance moves the order forward along pending → confirmed → preparing → ready → completed.
// Steps may be skipped; backward and repeated moves are rejected. Cancellation goes through Cancel.
// readyAt is recorded only when moving to ready.
func (o *Order) Advance(next Status, readyAt *time.Time, now time.Time) error {
	if !next.Valid() {
		return ErrInvalidStatus
	}
	if o.Status.Terminal() {
		return fmt.Errorf("%w: order is %s", ErrTerminal, o.Status)
	}
	if next == StatusCancelled || next.rank() <= o.Status.rank() {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, o.Status, next)
	}
	switch next {
	case StatusReady:
		if readyAt != nil {
			o.ActualReadyAt = copyTime(readyAt)
		}
	case StatusCompleted:
		if o.ActualReadyAt == nil {
			at := now
			o.ActualReadyAt = &at
		}
	}
	o.Status = next
	o.UpdatedAt = now
	return nil
}

// Cancel closes an order the kitchen has not started on yet.
func (o *Order) Cancel(now time.Time) error {
	if o.Status.Terminal() {
		return fmt.Errorf("%w: order is %s", ErrTerminal, o.Status)
	}
	if !o.Status.Cancellable() {
		return ErrNotCancellable
	}
	o.Status = StatusCancelled
	o.UpdatedAt = now
	return nil
}

func (o *Order) SetPaymentStatus(status PaymentStatus, now time.Time) error {
	if !isValidPaymentStatus(status) {
		return ErrInvalidPaymentStatus
	}
	o.PaymentStatus = status
	o.UpdatedAt = now
	return nil
}

// AttachFeedback records the customer's rating; only completed orders can be rated.
func (o *Order) AttachFeedback(rating int32, feedback string, now time.Time) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	if o.Status != StatusCompleted {
		return ErrFeedbackNotOpen
	}
	r := rating
	o.Rating = &r
	o.Feedback = strings.TrimSpace(feedback)
	o.UpdatedAt = now
	return nil
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]LineItem(nil), o.Items...)
	clone.ScheduledFor = copyTime(o.ScheduledFor)
	clone.ActualReadyAt = copyTime(o.ActualReadyAt)
	if o.Rating != nil {
		r := *o.Rating
		clone.Rating = &r
	}
	return &clone
}

func sumLines(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func isValidType(t Type) bool {
	switch t {
	case TypeDineIn, TypeTakeaway, TypePreOrder:
		return true
	default:
		return false
	}
}

func isValidPaymentStatus(p PaymentStatus) bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentRefunded:
		return true
	default:
		return false
	}
}

func isValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentDigital, PaymentUniversityCredit:
		return true
	default:
		return false
	}
}
