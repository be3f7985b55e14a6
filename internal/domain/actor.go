package domain

// Actor is the authenticated caller of an operation.
type Actor struct {
	AccountID string
	Role      Role
}

func (a Actor) IsElevated() bool {
	return a.Role.IsElevated()
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanActOn reports whether the actor owns the resource or holds an elevated role.
func (a Actor) CanActOn(ownerID string) bool {
	return a.AccountID == ownerID || a.IsElevated()
}
