package service

import (
	"fmt"

	"github.com/flicky/go-bookstore-api/internal/model"
)

type Action int

const (
	ActionUseCart Action = iota
	ActionPlaceOrder
	ActionListOrders
	ActionViewOrder
	ActionChangeOrderStatus
	ActionViewOrderHistory
	ActionManageCatalog
	ActionManageUsers
	ActionViewProfile
	ActionEditProfile
	ActionTopUpBalance
)

var actionNames = map[Action]string{
	ActionUseCart:           "use cart",
	ActionPlaceOrder:        "place order",
	ActionListOrders:        "list orders",
	ActionViewOrder:         "view order",
	ActionChangeOrderStatus: "change order status",
	ActionViewOrderHistory:  "view order history",
	ActionManageCatalog:     "manage catalog",
	ActionManageUsers:       "manage users",
	ActionViewProfile:       "view profile",
	ActionEditProfile:       "edit profile",
	ActionTopUpBalance:      "top up balance",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Authorize is the single policy check for every role-dependent operation.
// target is the email the caller acts on; empty means the caller itself or,
// for employees, everyone.
func Authorize(caller model.Caller, action Action, target string) error {
	own := target == "" || target == caller.Email

	var allowed bool
	switch caller.Role {
	case model.RoleClient:
		switch action {
		case ActionUseCart, ActionPlaceOrder, ActionTopUpBalance:
			allowed = true
		case ActionListOrders, ActionViewOrder, ActionViewProfile, ActionEditProfile:
			allowed = own
		}
	case model.RoleEmployee:
		switch action {
		case ActionListOrders, ActionViewOrder, ActionChangeOrderStatus, ActionViewOrderHistory,
			ActionManageCatalog, ActionManageUsers:
			allowed = true
		case ActionViewProfile, ActionEditProfile:
			allowed = own
		}
	}

	if !allowed {
		return fmt.Errorf("%w: %s may not %s", ErrForbidden, roleName(caller.Role), action)
	}
	return nil
}

func roleName(r model.Role) string {
	if r == "" {
		return "anonymous"
	}
	return string(r)
}
