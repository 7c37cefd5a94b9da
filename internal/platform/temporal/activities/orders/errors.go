package orders

import (
	"errors"
	"fmt"
	"strings"

	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/campus-canteen/internal/domains/orders/application"
	ordersports "github.com/Apurer/campus-canteen/internal/domains/orders/ports"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

// rejections maps application error types to the sentinels they carry across a workflow boundary.
var rejections = []struct {
	code     string
	sentinel error
}{
	{"InvalidInput", application.ErrInvalidInput},
	{"InvalidState", application.ErrInvalidState},
	{"ItemNotFound", application.ErrItemNotFound},
	{"ItemUnavailable", application.ErrItemUnavailable},
	{"InsufficientQuantity", application.ErrInsufficientQuantity},
	{"OrderNotFound", ordersports.ErrNotFound},
	{"Unauthenticated", auth.ErrUnauthenticated},
	{"AccessDenied", auth.ErrAccessDenied},
}

// ToApplicationError turns known business rejections into non-retryable Temporal errors.
// Anything else is returned unchanged and stays retryable.
func ToApplicationError(err error) error {
	if err == nil {
		return nil
	}
	for _, r := range rejections {
		if errors.Is(err, r.sentinel) {
			return temporal.NewNonRetryableApplicationError(err.Error(), r.code, nil)
		}
	}
	return err
}

// FromApplicationError restores the sentinel carried by a workflow failure so callers can
// match it with errors.Is.
func FromApplicationError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	for _, r := range rejections {
		if appErr.Type() == r.code {
			msg := appErr.Message()
			if msg == r.sentinel.Error() {
				return r.sentinel
			}
			return fmt.Errorf("%w: %s", r.sentinel, strings.TrimPrefix(msg, r.sentinel.Error()+": "))
		}
	}
	return err
}
