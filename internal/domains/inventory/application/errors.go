package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/campus-canteen/internal/domains/inventory/domain"
	"github.com/Apurer/campus-canteen/internal/domains/inventory/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid inventory input")
	// ErrInsufficientStock covers subtractions and wastage beyond what is on hand.
	ErrInsufficientStock = errors.New("stock too low")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrWastageExceedsStock) {
		return fmt.Errorf("%w: %w", ErrInsufficientStock, err)
	}
	if errors.Is(err, domain.ErrEmptyIngredient) ||
		errors.Is(err, domain.ErrInvalidUnit) ||
		errors.Is(err, domain.ErrInvalidCategory) ||
		errors.Is(err, domain.ErrNegativeStock) ||
		errors.Is(err, domain.ErrNegativeThreshold) ||
		errors.Is(err, domain.ErrInvalidCapacity) ||
		errors.Is(err, domain.ErrNegativeCost) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidOperation) ||
		errors.Is(err, domain.ErrInvalidReason) ||
		errors.Is(err, ports.ErrDuplicateIngredient) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
