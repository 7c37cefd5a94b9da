package canteenserver

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	userdomain "github.com/Apurer/campus-canteen/internal/domains/users/domain"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

const (
	currentUserKey  = "canteen.currentUser"
	sessionTokenKey = "canteen.sessionToken"
)

// Authenticator resolves a bearer token to an active account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*userdomain.User, error)
}

// authenticate requires a valid bearer token and stores the caller on the request context.
func authenticate(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" || authenticator == nil {
			respondError(c, auth.ErrUnauthenticated)
			return
		}
		user, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(currentUserKey, user)
		c.Set(sessionTokenKey, token)
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), user.Principal()))
		c.Next()
	}
}

// requireOperation rejects callers whose role is not on the operation's allow-list.
func requireOperation(op auth.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.Authorize(principal(c), op); err != nil {
			respondError(c, err)
			return
		}
		c.Next()
	}
}

// principal returns the authenticated caller, or the zero principal on public routes.
func principal(c *gin.Context) auth.Principal {
	p, _ := auth.PrincipalFrom(c.Request.Context())
	return p
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
