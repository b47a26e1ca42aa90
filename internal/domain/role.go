package domain

// Role enumerates account roles. Authorization checks compare Role values,
// never raw strings.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleEngineer Role = "ENGINEER"
	RoleCustomer Role = "CUSTOMER"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEngineer, RoleCustomer:
		return true
	}
	return false
}

// Staff reports whether the role belongs to internal personnel.
func (r Role) Staff() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleEngineer
}
