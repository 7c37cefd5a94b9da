package canteenserver

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	// Operation guards the route. Empty means the route is public.
	Operation auth.Operation
}

// ApiHandleFunctions groups the handlers of every API section.
type ApiHandleFunctions struct {
	AuthAPI      AuthAPI
	MenuAPI      MenuAPI
	OrdersAPI    OrdersAPI
	InventoryAPI InventoryAPI
	UsersAPI     UsersAPI
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions, authenticator Authenticator, logger *slog.Logger) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions, authenticator, logger)
}

// NewRouterWithGinEngine adds the canteen routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions, authenticator Authenticator, logger *slog.Logger) *gin.Engine {
	responder := newErrorResponder(logger)
	router.Use(withResponder(responder))
	router.NoRoute(func(c *gin.Context) {
		respondProblem(c, notFoundRoute(c))
	})
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		handlers := []gin.HandlerFunc{}
		if route.Operation != "" {
			handlers = append(handlers, authenticate(authenticator), requireOperation(route.Operation))
		}
		handlers = append(handlers, route.HandlerFunc)
		router.Handle(route.Method, route.Pattern, handlers...)
	}
	return router
}

// DefaultHandleFunc is the default handler used when a route has none.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"Health", http.MethodGet, "/health", health, ""},

		{"Register", http.MethodPost, "/api/auth/register", handleFunctions.AuthAPI.Register, ""},
		{"Login", http.MethodPost, "/api/auth/login", handleFunctions.AuthAPI.Login, ""},
		{"Logout", http.MethodPost, "/api/auth/logout", handleFunctions.AuthAPI.Logout, auth.OpViewProfile},
		{"Me", http.MethodGet, "/api/auth/me", handleFunctions.AuthAPI.Me, auth.OpViewProfile},
		{"UpdateProfile", http.MethodPut, "/api/auth/profile", handleFunctions.AuthAPI.UpdateProfile, auth.OpViewProfile},

		{"ListMenu", http.MethodGet, "/api/menu", handleFunctions.MenuAPI.ListMenu, ""},
		{"MenuCategories", http.MethodGet, "/api/menu/categories", handleFunctions.MenuAPI.Categories, ""},
		{"GetMenuItem", http.MethodGet, "/api/menu/:id", handleFunctions.MenuAPI.GetMenuItem, ""},
		{"CreateMenuItem", http.MethodPost, "/api/menu", handleFunctions.MenuAPI.CreateMenuItem, auth.OpManageMenu},
		{"UpdateMenuItem", http.MethodPut, "/api/menu/:id", handleFunctions.MenuAPI.UpdateMenuItem, auth.OpManageMenu},
		{"ToggleAvailability", http.MethodPatch, "/api/menu/:id/availability", handleFunctions.MenuAPI.ToggleAvailability, auth.OpManageMenu},
		{"UpdateQuantity", http.MethodPatch, "/api/menu/:id/quantity", handleFunctions.MenuAPI.UpdateQuantity, auth.OpManageMenu},
		{"DeleteMenuItem", http.MethodDelete, "/api/menu/:id", handleFunctions.MenuAPI.DeleteMenuItem, auth.OpDeleteMenuItem},

		{"PlaceOrder", http.MethodPost, "/api/orders", handleFunctions.OrdersAPI.PlaceOrder, auth.OpPlaceOrder},
		{"ListMyOrders", http.MethodGet, "/api/orders/my-orders", handleFunctions.OrdersAPI.ListMyOrders, auth.OpListOwnOrders},
		{"ListOrders", http.MethodGet, "/api/orders", handleFunctions.OrdersAPI.ListOrders, auth.OpListAllOrders},
		{"OrderAnalytics", http.MethodGet, "/api/orders/analytics", handleFunctions.OrdersAPI.Analytics, auth.OpViewAnalytics},
		{"GetOrder", http.MethodGet, "/api/orders/:id", handleFunctions.OrdersAPI.GetOrder, auth.OpViewOrder},
		{"UpdateOrderStatus", http.MethodPatch, "/api/orders/:id/status", handleFunctions.OrdersAPI.UpdateStatus, auth.OpUpdateOrderStatus},
		{"CancelOrder", http.MethodPatch, "/api/orders/:id/cancel", handleFunctions.OrdersAPI.CancelOrder, auth.OpCancelOrder},
		{"UpdatePaymentStatus", http.MethodPatch, "/api/orders/:id/payment", handleFunctions.OrdersAPI.UpdatePaymentStatus, auth.OpUpdatePaymentStatus},
		{"AddFeedback", http.MethodPost, "/api/orders/:id/feedback", handleFunctions.OrdersAPI.AddFeedback, auth.OpAddFeedback},

		{"ListInventory", http.MethodGet, "/api/inventory", handleFunctions.InventoryAPI.ListItems, auth.OpManageInventory},
		{"InventoryCategories", http.MethodGet, "/api/inventory/categories", handleFunctions.InventoryAPI.Categories, auth.OpManageInventory},
		{"LowStock", http.MethodGet, "/api/inventory/low-stock", handleFunctions.InventoryAPI.LowStock, auth.OpManageInventory},
		{"WastageReport", http.MethodGet, "/api/inventory/wastage-report", handleFunctions.InventoryAPI.WastageReport, auth.OpManageInventory},
		{"GetInventoryItem", http.MethodGet, "/api/inventory/:id", handleFunctions.InventoryAPI.GetItem, auth.OpManageInventory},
		{"CreateInventoryItem", http.MethodPost, "/api/inventory", handleFunctions.InventoryAPI.CreateItem, auth.OpManageInventory},
		{"UpdateInventoryItem", http.MethodPut, "/api/inventory/:id", handleFunctions.InventoryAPI.UpdateItem, auth.OpManageInventory},
		{"DeleteInventoryItem", http.MethodDelete, "/api/inventory/:id", handleFunctions.InventoryAPI.DeleteItem, auth.OpDeleteInventoryItem},
		{"AdjustStock", http.MethodPatch, "/api/inventory/:id/stock", handleFunctions.InventoryAPI.AdjustStock, auth.OpManageInventory},
		{"RecordWastage", http.MethodPost, "/api/inventory/:id/wastage", handleFunctions.InventoryAPI.RecordWastage, auth.OpManageInventory},

		{"ListUsers", http.MethodGet, "/api/users", handleFunctions.UsersAPI.ListUsers, auth.OpManageUsers},
		{"ToggleUserStatus", http.MethodPatch, "/api/users/:id/status", handleFunctions.UsersAPI.ToggleStatus, auth.OpManageUsers},
		{"SetUserRole", http.MethodPatch, "/api/users/:id/role", handleFunctions.UsersAPI.SetRole, auth.OpManageUsers},
	}
}
