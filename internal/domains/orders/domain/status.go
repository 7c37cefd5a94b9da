package domain

import (
	"fmt"
	"strings"
)

// Status enumerates order progression.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled}
}

// ParseStatus converts raw input into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if s.Valid() {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

func (s Status) Valid() bool {
	return s.rank() >= 0
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Cancellable reports whether the kitchen has not started on the order yet.
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusConfirmed
}

// rank orders the forward path; cancelled sits outside it.
func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusConfirmed:
		return 1
	case StatusPreparing:
		return 2
	case StatusReady:
		return 3
	case StatusCompleted:
		return 4
	case StatusCancelled:
		return 5
	default:
		return -1
	}
}

// Type is how the customer receives the order.
type Type string

const (
	TypeDineIn   Type = "dine-in"
	TypeTakeaway Type = "takeaway"
	TypePreOrder Type = "pre-order"
)

func Types() []Type {
	return []Type{TypeDineIn, TypeTakeaway, TypePreOrder}
}

// ParseType converts raw input into a Type; empty input means dine-in.
func ParseType(raw string) (Type, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return TypeDineIn, nil
	}
	for _, t := range Types() {
		if string(t) == raw {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, raw)
}

// PaymentStatus tracks settlement of the order total.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

func PaymentStatuses() []PaymentStatus {
	return []PaymentStatus{PaymentPending, PaymentPaid, PaymentRefunded}
}

func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for _, p := range PaymentStatuses() {
		if string(p) == raw {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPaymentStatus, raw)
}

// PaymentMethod is how the customer intends to pay.
type PaymentMethod string

const (
	PaymentCash             PaymentMethod = "cash"
	PaymentCard             PaymentMethod = "card"
	PaymentDigital          PaymentMethod = "digital"
	PaymentUniversityCredit PaymentMethod = "university-credit"
)

func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentCash, PaymentCard, PaymentDigital, PaymentUniversityCredit}
}

// ParsePaymentMethod converts raw input; empty input means cash.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return PaymentCash, nil
	}
	for _, m := range PaymentMethods() {
		if string(m) == raw {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, raw)
}
