package orders

import (
	"github.com/minhnguyen-io/lenscraft-backend/pkg/enums"
)

// transitionTable is the order state machine. Delivered and cancelled are
// terminal.
var transitionTable = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed:  {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing: {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:    {enums.OrderStatusDelivered},
}

// roleTargets gates which target statuses each role may request. Customers
// never drive fulfillment transitions.
var roleTargets = map[enums.UserRole][]enums.OrderStatus{
	enums.UserRoleCustomer: {},
	enums.UserRoleStaff: {
		enums.OrderStatusProcessing,
		enums.OrderStatusShipped,
		enums.OrderStatusDelivered,
	},
	enums.UserRoleManager: {
		enums.OrderStatusConfirmed,
		enums.OrderStatusProcessing,
		enums.OrderStatusShipped,
		enums.OrderStatusDelivered,
		enums.OrderStatusCancelled,
	},
	enums.UserRoleAdmin: {
		enums.OrderStatusConfirmed,
		enums.OrderStatusProcessing,
		enums.OrderStatusShipped,
		enums.OrderStatusDelivered,
		enums.OrderStatusCancelled,
	},
}

type transitionKey struct {
	from enums.OrderStatus
	role enums.UserRole
}

// permitted is the (from, role) -> target set lookup built once at startup by
// intersecting the state machine with the role policy.
var permitted = buildPermitted()

func buildPermitted() map[transitionKey]map[enums.OrderStatus]bool {
	out := make(map[transitionKey]map[enums.OrderStatus]bool)
	for from, targets := range transitionTable {
		for role, allowed := range roleTargets {
			set := make(map[enums.OrderStatus]bool)
			for _, target := range targets {
				for _, roleTarget := range allowed {
					if target == roleTarget {
						set[target] = true
					}
				}
			}
			out[transitionKey{from: from, role: role}] = set
		}
	}
	return out
}

// CanTransition reports whether role may move an order from one status to
// another.
func CanTransition(from, to enums.OrderStatus, role enums.UserRole) bool {
	return permitted[transitionKey{from: from, role: role}][to]
}
