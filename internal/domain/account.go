package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is the marketplace role carried by an account.
type Role string

const (
	RoleCustomer  Role = "CUSTOMER"
	RoleHost      Role = "HOST"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleHost, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// IsElevated reports roles allowed to act on other accounts' resources.
func (r Role) IsElevated() bool {
	return r == RoleModerator || r == RoleAdmin
}

// Account is a marketplace user together with its internal ledger balance.
type Account struct {
	ID        string
	Name      string
	Balance   decimal.Decimal
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}
