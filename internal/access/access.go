// Package access models who is calling (Principal) and what each API
// operation requires (the policy table).
package access

import (
	"fmt"

	"github.com/MikeMC777/littlelemon-api/internal/apperr"
)

type Role string

const (
	RoleCustomer     Role = "customer"
	RoleDeliveryCrew Role = "delivery-crew"
	RoleManager      Role = "manager"
)

// Groups are the roles stored as explicit memberships. Customer is the
// implicit role of every user outside them.
var Groups = []Role{RoleManager, RoleDeliveryCrew}

func ParseGroup(s string) (Role, error) {
	for _, r := range Groups {
		if string(r) == s {
			return r, nil
		}
	}
	return "", apperr.Validationf("unknown group %q", s)
}

// Principal is the identity attached to a request. The zero value is the
// anonymous caller.
type Principal struct {
	UserID   string
	Username string
	Admin    bool
	Roles    []Role
}

func Anonymous() Principal { return Principal{} }

func (p Principal) Authenticated() bool { return p.UserID != "" }

func (p Principal) HasRole(r Role) bool {
	if !p.Authenticated() {
		return false
	}
	if r == RoleCustomer {
		return len(p.Roles) == 0
	}
	for _, have := range p.Roles {
		if have == r {
			return true
		}
	}
	return false
}

func (p Principal) String() string {
	if !p.Authenticated() {
		return "anonymous"
	}
	return fmt.Sprintf("%s(%s)", p.Username, p.UserID)
}
