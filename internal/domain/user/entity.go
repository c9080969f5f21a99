package user

// Role is the coarse role carried in the access token.
type Role string

const (
	RoleOwner    Role = "owner"    // Full access, including paying runs
	RoleManager  Role = "manager"  // Prepares and approves payroll, decides leave
	RoleEmployee Role = "employee" // Own attendance, leave and payslips
)

// Actor is the already-authenticated caller handed to services.
type Actor struct {
	UserID     string
	EmployeeID string
	Role       Role
}

// Can reports whether the actor's role grants permission.
func (a Actor) Can(permission Permission) bool {
	return HasPermission(a.Role, permission)
}

// IsValid reports whether role is one of the known roles.
func (r Role) IsValid() bool {
	_, ok := RolePermissions[r]
	return ok
}
