package auth

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleAdmin, RoleApprover, RoleDeveloper:
		return true
	default:
		return false
	}
}

// IsValidStatus checks if the status is one of the predefined lifecycle states
func IsValidStatus(s UserStatus) bool {
	switch s {
	case UserStatusActive, UserStatusInactive:
		return true
	default:
		return false
	}
}

// AllRoles returns all predefined roles
func AllRoles() []UserRole {
	return []UserRole{
		RoleAdmin,
		RoleApprover,
		RoleDeveloper,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}

// roleSet is the membership structure backing role gates.
type roleSet map[UserRole]struct{}

func newRoleSet(roles ...UserRole) roleSet {
	set := make(roleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func (s roleSet) contains(role UserRole) bool {
	_, ok := s[role]
	return ok
}
