package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/campus-canteen/internal/domains/users/domain"
	"github.com/Apurer/campus-canteen/internal/domains/users/ports"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid user input")
	// ErrAuthentication wraps authentication failures.
	ErrAuthentication = errors.New("authentication failed")
	// ErrConflict signals a uniqueness violation.
	ErrConflict = errors.New("user conflict")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidEmail) ||
		errors.Is(err, domain.ErrEmptyPassword) ||
		errors.Is(err, domain.ErrWeakPassword) ||
		errors.Is(err, domain.ErrNameRequired) ||
		errors.Is(err, domain.ErrInvalidDepartment) ||
		errors.Is(err, domain.ErrInvalidPreference) ||
		errors.Is(err, domain.ErrStudentDetails) ||
		errors.Is(err, auth.ErrInvalidRole) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, ports.ErrEmailTaken) || errors.Is(err, ports.ErrStudentIDTaken) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	if errors.Is(err, ports.ErrInvalidCredentials) || errors.Is(err, ports.ErrSessionNotFound) {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	return err
}
