package auth

// Gate is a pure predicate over a resolved actor. Gates produce no side
// effects and must be evaluated on every request; a prior allow is never
// cached.
type Gate func(user *User) error

// PermissionSpec names the capability flags a permission gate requires.
// Multiple required flags are evaluated with AND semantics.
type PermissionSpec struct {
	Evidence bool
	Vuln     bool
}

// RequireRoles allows actors whose live role is in the given set
func RequireRoles(roles ...UserRole) Gate {
	allowed := newRoleSet(roles...)

	return func(user *User) error {
		if user == nil {
			return ErrUnauthenticated
		}
		if !allowed.contains(user.Role) {
			return ErrForbidden
		}
		return nil
	}
}

// RequirePermissions allows actors carrying every required capability
// flag. Role is not consulted; an admin without the flag is denied.
func RequirePermissions(spec PermissionSpec) Gate {
	return func(user *User) error {
		if user == nil {
			return ErrUnauthenticated
		}
		if spec.Evidence && !user.PermissionEvidence {
			return ErrForbidden
		}
		if spec.Vuln && !user.PermissionVuln {
			return ErrForbidden
		}
		return nil
	}
}

// AllOf combines gates; every gate must allow
func AllOf(gates ...Gate) Gate {
	return func(user *User) error {
		for _, gate := range gates {
			if gate == nil {
				continue
			}
			if err := gate(user); err != nil {
				return err
			}
		}
		return nil
	}
}

// Commonly used gate instances, mirroring the platform's protected
// operation groups.
var (
	RequireAdmin           = RequireRoles(RoleAdmin)
	RequireApproverOrAdmin = RequireRoles(RoleAdmin, RoleApprover)
	RequireEvidenceAccess  = RequirePermissions(PermissionSpec{Evidence: true})
	RequireVulnAccess      = RequirePermissions(PermissionSpec{Vuln: true})
)
