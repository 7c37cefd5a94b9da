package application

import (
	"errors"
	"fmt"

	catalogdomain "github.com/Apurer/campus-canteen/internal/domains/catalog/domain"
	"github.com/Apurer/campus-canteen/internal/domains/orders/domain"
)

var (
	// ErrInvalidInput signals malformed input or a wrong enum value.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrInvalidState signals an operation not legal in the order's current status.
	ErrInvalidState = errors.New("invalid order state")
	// ErrItemNotFound signals an order line referencing a menu item that does not exist.
	ErrItemNotFound = errors.New("menu item not found")
	// ErrItemUnavailable and ErrInsufficientQuantity are the catalog's stock errors.
	ErrItemUnavailable      = catalogdomain.ErrUnavailable
	ErrInsufficientQuantity = catalogdomain.ErrInsufficientQuantity
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidCustomer) ||
		errors.Is(err, domain.ErrNoItems) ||
		errors.Is(err, domain.ErrInvalidMenuItem) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrNegativeUnitPrice) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrInvalidType) ||
		errors.Is(err, domain.ErrInvalidPaymentStatus) ||
		errors.Is(err, domain.ErrInvalidPaymentMethod) ||
		errors.Is(err, domain.ErrMissingSchedule) ||
		errors.Is(err, domain.ErrTotalMismatch) ||
		errors.Is(err, domain.ErrInvalidRating) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrNotCancellable) ||
		errors.Is(err, domain.ErrTerminal) ||
		errors.Is(err, domain.ErrFeedbackNotOpen) {
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	return err
}
