package user

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Can resolve justifications and override shifts
	RoleEmployee Role = "employee" // Regular employee
	RolePending  Role = "pending"  // Still in onboarding
)

// IsManager reports whether the role may act on other employees' shifts.
func (r Role) IsManager() bool {
	return r == RoleManager || r == RoleOwner
}
