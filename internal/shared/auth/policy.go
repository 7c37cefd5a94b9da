package auth

import "fmt"

// Operation names a guarded use case.
type Operation string

const (
	OpPlaceOrder          Operation = "orders.place"
	OpListOwnOrders       Operation = "orders.list_own"
	OpViewOrder           Operation = "orders.view"
	OpCancelOrder         Operation = "orders.cancel"
	OpAddFeedback         Operation = "orders.feedback"
	OpListAllOrders       Operation = "orders.list_all"
	OpUpdateOrderStatus   Operation = "orders.update_status"
	OpUpdatePaymentStatus Operation = "orders.update_payment"
	OpViewAnalytics       Operation = "orders.analytics"

	OpManageMenu     Operation = "catalog.manage"
	OpDeleteMenuItem Operation = "catalog.delete"

	OpManageInventory     Operation = "inventory.manage"
	OpDeleteInventoryItem Operation = "inventory.delete"

	OpViewProfile Operation = "users.profile"
	OpManageUsers Operation = "users.manage"
)

var (
	everyone  = []Role{RoleAdmin, RoleStaff, RoleStudent, RoleLecturer}
	operators = []Role{RoleAdmin, RoleStaff}
	admins    = []Role{RoleAdmin}
)

// policy is the allow-list consulted by Authorize. Operations missing here are denied.
var policy = map[Operation][]Role{
	OpPlaceOrder:          everyone,
	OpListOwnOrders:       everyone,
	OpViewOrder:           everyone,
	OpCancelOrder:         everyone,
	OpAddFeedback:         everyone,
	OpListAllOrders:       operators,
	OpUpdateOrderStatus:   operators,
	OpUpdatePaymentStatus: operators,
	OpViewAnalytics:       admins,

	OpManageMenu:     operators,
	OpDeleteMenuItem: admins,

	OpManageInventory:     operators,
	OpDeleteInventoryItem: admins,

	OpViewProfile: everyone,
	OpManageUsers: admins,
}

// Authorize is the single gate every transport and service call goes through.
func Authorize(p Principal, op Operation) error {
	if !p.Authenticated() {
		return ErrUnauthenticated
	}
	if Allowed(p.Role, op) {
		return nil
	}
	return fmt.Errorf("%w: role %s may not perform %s", ErrAccessDenied, p.Role, op)
}

// Allowed reports whether role appears on the allow-list for op.
func Allowed(role Role, op Operation) bool {
	for _, allowed := range policy[op] {
		if allowed == role {
			return true
		}
	}
	return false
}
