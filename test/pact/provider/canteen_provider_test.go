//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	pacttest "github.com/Apurer/campus-canteen/test/pact"

	canteenserver "github.com/Apurer/campus-canteen/go"
	catalogmemory "github.com/Apurer/campus-canteen/internal/domains/catalog/adapters/memory"
	catalogapp "github.com/Apurer/campus-canteen/internal/domains/catalog/application"
	catalogdomain "github.com/Apurer/campus-canteen/internal/domains/catalog/domain"
	inventorymemory "github.com/Apurer/campus-canteen/internal/domains/inventory/adapters/memory"
	inventoryapp "github.com/Apurer/campus-canteen/internal/domains/inventory/application"
	ordersmemory "github.com/Apurer/campus-canteen/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/campus-canteen/internal/domains/orders/adapters/observability"
	orderworkflows "github.com/Apurer/campus-canteen/internal/domains/orders/adapters/workflows"
	orderapp "github.com/Apurer/campus-canteen/internal/domains/orders/application"
	usermemory "github.com/Apurer/campus-canteen/internal/domains/users/adapters/memory"
	userobs "github.com/Apurer/campus-canteen/internal/domains/users/adapters/observability"
	userapp "github.com/Apurer/campus-canteen/internal/domains/users/application"
	userdomain "github.com/Apurer/campus-canteen/internal/domains/users/domain"
	"github.com/Apurer/campus-canteen/internal/shared/auth"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCanteenProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateMenuItemExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			if setup {
				app.seedDish(t, 10)
			}
			return nil, nil
		},
		pacttest.StateMenuItemMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			return nil, nil
		},
		pacttest.StateCustomerSession: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			if setup {
				app.seedDish(t, 20)
				app.seedCustomerSession(t)
			}
			return nil, nil
		},
		pacttest.StateNoSession: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset()
			return nil
		},
	})
	require.NoError(t, err)
}

// contractProviderApp rebuilds the in-memory API for every provider state.
type contractProviderApp struct {
	mu       sync.Mutex
	handler  http.Handler
	menu     *catalogmemory.Repository
	users    *usermemory.Repository
	sessions *usermemory.SessionStore
	server   *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()
	app := &contractProviderApp{}
	app.reset()
	app.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.mu.Lock()
		handler := app.handler
		app.mu.Unlock()
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(app.server.Close)
	return app
}

func (a *contractProviderApp) reset() {
	menu := catalogmemory.NewRepository()
	orders := ordersmemory.NewRepository()
	users := usermemory.NewRepository()
	sessions := usermemory.NewSessionStore()

	userService := userobs.New(userapp.NewService(users, sessions))
	orderService := ordersobs.New(orderapp.NewService(ordersmemory.NewUnitOfWork(menu, orders, nil), orders, menu))
	handlers := canteenserver.ApiHandleFunctions{
		AuthAPI:      canteenserver.NewAuthAPI(userService),
		MenuAPI:      canteenserver.NewMenuAPI(catalogapp.NewService(menu)),
		OrdersAPI:    canteenserver.NewOrdersAPI(orderService, orderworkflows.NewInlinePlacement(orderService)),
		InventoryAPI: canteenserver.NewInventoryAPI(inventoryapp.NewService(inventorymemory.NewRepository())),
		UsersAPI:     canteenserver.NewUsersAPI(userService),
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router = canteenserver.NewRouterWithGinEngine(router, handlers, userService, nil)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.handler = router
	a.menu = menu
	a.users = users
	a.sessions = sessions
}

func (a *contractProviderApp) seedDish(t testing.TB, remaining int32) {
	t.Helper()
	price, err := decimal.NewFromString(pacttest.ExampleDishPrice)
	require.NoError(t, err)
	item, err := catalogdomain.NewMenuItem(pacttest.ExampleDishName, price, catalogdomain.CategoryMainCourse)
	require.NoError(t, err)
	item.ID = pacttest.ExistingMenuItemID
	item.RemainingQuantity = remaining
	_, err = a.menu.Save(context.Background(), item)
	require.NoError(t, err)
}

func (a *contractProviderApp) seedCustomerSession(t testing.TB) {
	t.Helper()
	user, err := userdomain.NewUser(pacttest.CustomerEmail, "pact-pass1", auth.RoleLecturer, userdomain.Profile{FirstName: "Pact", LastName: "Lecturer"})
	require.NoError(t, err)
	saved, err := a.users.Save(context.Background(), user)
	require.NoError(t, err)
	require.NoError(t, a.sessions.Save(context.Background(), userdomain.Session{
		Token:     pacttest.CustomerToken,
		UserID:    saved.ID,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}))
}
