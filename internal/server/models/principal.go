package models

// Role is one of a closed set of access levels.
type Role string

const (
	RoleAdministrator   Role = "administrator"
	RoleManager         Role = "manager"
	RoleContributor     Role = "contributor"
	RoleRestrictedGuest Role = "restricted-guest"
)

// Valid reports whether r belongs to the known set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleManager, RoleContributor, RoleRestrictedGuest:
		return true
	}
	return false
}

// Principal is the already-authenticated caller.
type Principal struct {
	ID   string
	Name string
	Role Role
}
