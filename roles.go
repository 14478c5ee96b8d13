package auth

import "strings"

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleVisitor, RoleProposer, RoleAdmin:
		return true
	default:
		return false
	}
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleVisitor,
		RoleProposer,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a UserRole value.
// Role names are case insensitive on the way in, canonical uppercase out.
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(strings.ToUpper(strings.TrimSpace(roleStr)))
	return role, IsValidRole(role)
}
