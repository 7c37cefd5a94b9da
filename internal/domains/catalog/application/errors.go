package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/campus-canteen/internal/domains/catalog/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid menu item input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrNegativePrice) ||
		errors.Is(err, domain.ErrInvalidCategory) ||
		errors.Is(err, domain.ErrInvalidDietaryTag) ||
		errors.Is(err, domain.ErrNegativePreparation) ||
		errors.Is(err, domain.ErrInvalidDailyQuantity) ||
		errors.Is(err, domain.ErrRemainingOutOfRange) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
