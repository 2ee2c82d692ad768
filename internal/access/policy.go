package access

import "github.com/MikeMC777/littlelemon-api/internal/apperr"

type Operation string

const (
	MenuList   Operation = "menu.list"
	MenuGet    Operation = "menu.get"
	MenuCreate Operation = "menu.create"
	MenuUpdate Operation = "menu.update"
	MenuDelete Operation = "menu.delete"

	GroupList   Operation = "group.list"
	GroupAdd    Operation = "group.add"
	GroupGet    Operation = "group.get"
	GroupRemove Operation = "group.remove"

	CartList  Operation = "cart.list"
	CartAdd   Operation = "cart.add"
	CartClear Operation = "cart.clear"

	OrderList     Operation = "order.list"
	OrderCheckout Operation = "order.checkout"
	OrderGet      Operation = "order.get"
	OrderUpdate   Operation = "order.update"
	OrderDelete   Operation = "order.delete"

	UserRegister Operation = "user.register"
	UserToken    Operation = "user.token"
)

type Rule int

const (
	Anyone Rule = iota + 1
	Authenticated
	AdminOnly
)

// Policy maps every operation to the rule that guards it. Order rows are
// further scoped by ownership inside the order service.
var Policy = map[Operation]Rule{
	MenuList:   Anyone,
	MenuGet:    Anyone,
	MenuCreate: AdminOnly,
	MenuUpdate: AdminOnly,
	MenuDelete: AdminOnly,

	GroupList:   AdminOnly,
	GroupAdd:    AdminOnly,
	GroupGet:    AdminOnly,
	GroupRemove: AdminOnly,

	CartList:  Authenticated,
	CartAdd:   Authenticated,
	CartClear: Authenticated,

	OrderList:     Authenticated,
	OrderCheckout: Authenticated,
	OrderGet:      Authenticated,
	OrderUpdate:   Authenticated,
	OrderDelete:   Authenticated,

	UserRegister: Anyone,
	UserToken:    Anyone,
}

// Authorize checks p against the rule for op. Operations missing from the
// table are denied.
func Authorize(p Principal, op Operation) error {
	rule, ok := Policy[op]
	if !ok {
		return apperr.ErrPermissionDenied
	}
	switch rule {
	case Anyone:
		return nil
	case Authenticated:
		if !p.Authenticated() {
			return apperr.ErrNotAuthenticated
		}
		return nil
	case AdminOnly:
		if !p.Authenticated() {
			return apperr.ErrNotAuthenticated
		}
		if !p.Admin {
			return apperr.ErrPermissionDenied
		}
		return nil
	}
	return apperr.ErrPermissionDenied
}
