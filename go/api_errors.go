package canteenserver

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/Apurer/campus-canteen/internal/domains/catalog/application"
	catalogports "github.com/Apurer/campus-canteen/internal/domains/catalog/ports"
	inventoryapp "github.com/Apurer/campus-canteen/internal/domains/inventory/application"
	inventoryports "github.com/Apurer/campus-canteen/internal/domains/inventory/ports"
	orderapp "github.com/Apurer/campus-canteen/internal/domains/orders/application"
	orderports "github.com/Apurer/campus-canteen/internal/domains/orders/ports"
	userapp "github.com/Apurer/campus-canteen/internal/domains/users/application"
	userdomain "github.com/Apurer/campus-canteen/internal/domains/users/domain"
	userports "github.com/Apurer/campus-canteen/internal/domains/users/ports"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
	apierrors "github.com/Apurer/campus-canteen/internal/shared/errors"
)

const responderKey = "canteen.responder"

var fallbackResponder = newErrorResponder(nil)

func newErrorResponder(logger *slog.Logger) *apierrors.ChainedResponder {
	r := apierrors.NewChainedResponder("",
		mapAuthError,
		mapOrderError,
		mapMenuError,
		mapInventoryError,
		mapUserError,
	)
	r.Logger = logger
	return r
}

func withResponder(r *apierrors.ChainedResponder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responderKey, r)
		c.Next()
	}
}

func responderFor(c *gin.Context) *apierrors.ChainedResponder {
	if v, ok := c.Get(responderKey); ok {
		if r, ok := v.(*apierrors.ChainedResponder); ok {
			return r
		}
	}
	return fallbackResponder
}

// respondError maps err through the context mappers; unknown errors become a logged 500.
func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responderFor(c).RespondError(c, err)
}

func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responderFor(c).Respond(c, problem)
}

func respondBadRequest(c *gin.Context, detail string) {
	responderFor(c).BadRequest(c, detail)
}

func respondBindingError(c *gin.Context, err error) {
	responderFor(c).BindingFailed(c, err)
}

func notFoundRoute(c *gin.Context) apierrors.ProblemDetail {
	return apierrors.ErrNotFound.WithDetail(fmt.Sprintf("Route %s %s not found", c.Request.Method, c.Request.URL.Path))
}

func mapAuthError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return apierrors.ErrUnauthorized.WithDetail("No token, authorization denied"), true
	case errors.Is(err, auth.ErrAccessDenied):
		return apierrors.ErrForbidden.WithDetail("Access denied"), true
	case errors.Is(err, userdomain.ErrAccountDeactivated):
		return apierrors.ErrForbidden.WithDetail("Account is deactivated."), true
	case errors.Is(err, userapp.ErrAuthentication):
		if errors.Is(err, userports.ErrInvalidCredentials) {
			return apierrors.ErrUnauthorized.WithDetail("Invalid credentials"), true
		}
		return apierrors.ErrUnauthorized.WithDetail("Token is not valid"), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapOrderError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, orderapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(clientMessage(err, orderapp.ErrInvalidInput)), true
	case errors.Is(err, orderapp.ErrInvalidState):
		return apierrors.ErrInvalidState.WithDetail(clientMessage(err, orderapp.ErrInvalidState)), true
	case errors.Is(err, orderapp.ErrItemNotFound),
		errors.Is(err, orderapp.ErrItemUnavailable),
		errors.Is(err, orderapp.ErrInsufficientQuantity):
		return apierrors.ErrStock.WithDetail(capitalize(err.Error())), true
	case errors.Is(err, orderports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail("Order not found"), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapMenuError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, catalogapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(clientMessage(err, catalogapp.ErrInvalidInput)), true
	case errors.Is(err, catalogports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail("Menu item not found"), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapInventoryError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, inventoryapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(clientMessage(err, inventoryapp.ErrInvalidInput)), true
	case errors.Is(err, inventoryapp.ErrInsufficientStock):
		return apierrors.ErrStock.WithDetail(clientMessage(err, inventoryapp.ErrInsufficientStock)), true
	case errors.Is(err, inventoryports.ErrDuplicateIngredient):
		return apierrors.ErrValidation.WithDetail(capitalize(inventoryports.ErrDuplicateIngredient.Error())), true
	case errors.Is(err, inventoryports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail("Inventory item not found"), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapUserError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, userapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(clientMessage(err, userapp.ErrInvalidInput)), true
	case errors.Is(err, userapp.ErrConflict):
		return apierrors.ErrBadRequest.WithDetail(clientMessage(err, userapp.ErrConflict)), true
	case errors.Is(err, userports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail("User not found"), true
	}
	return apierrors.ProblemDetail{}, false
}

// clientMessage drops the application sentinel prefix and capitalizes what remains.
func clientMessage(err, sentinel error) string {
	return capitalize(strings.TrimPrefix(err.Error(), sentinel.Error()+": "))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
