package roles

// Role names. Keep these stable; they appear inside backend-issued tokens.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

func IsAdmin(role string) bool { return role == RoleAdmin }

// Known reports whether the role is one of the two supported values.
// Anything else is treated as unprivileged downstream.
func Known(role string) bool { return role == RoleUser || role == RoleAdmin }

// CanViewAllTasks gates the all-owners task listing.
func CanViewAllTasks(role string) bool { return IsAdmin(role) }
