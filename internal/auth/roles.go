package auth

// Role is what an operator token may do.
type Role string

// Operator roles. Reads are public and need no token.
const (
	// RoleSecretary enters scores and uses image extraction.
	RoleSecretary Role = "secretary"
	// RoleAdmin additionally manages leagues, rosters and schedules.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleSecretary || r == RoleAdmin
}

// ScoreRoles returns roles that can submit score sheets.
func ScoreRoles() []Role {
	return []Role{RoleSecretary, RoleAdmin}
}

// ManageRoles returns roles that can change league configuration.
func ManageRoles() []Role {
	return []Role{RoleAdmin}
}
