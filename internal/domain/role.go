package domain

// Role is the closed set of account roles recognized by this surface.
type Role string

const (
	RolePassenger Role = "passenger"
	RoleStaff     Role = "staff"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a raw claim value onto the closed role set.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RolePassenger, RoleStaff, RoleAdmin:
		return Role(raw), true
	default:
		return "", false
	}
}

// HomePath returns the canonical gated view for the role, or "" when the role
// has no home on this surface. Admin accounts are served by the separate admin
// portal and have no home here.
func (r Role) HomePath() string {
	switch r {
	case RolePassenger:
		return "/profile/passenger"
	case RoleStaff:
		return "/profile/staff"
	default:
		return ""
	}
}
