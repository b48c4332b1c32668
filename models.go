package auth

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// UserRole is the user's platform role
type UserRole = string

const (
	// RoleAdmin is the security-team administrator role
	RoleAdmin UserRole = "admin"
	// RoleApprover is a team lead who signs off remediation work
	RoleApprover UserRole = "approver"
	// RoleDeveloper is an engineer assigned to remediation work
	RoleDeveloper UserRole = "developer"
)

// UserStatus is the user's lifecycle status
type UserStatus = string

const (
	// UserStatusActive users may authenticate and act
	UserStatusActive UserStatus = "active"
	// UserStatusInactive users are locked out but their records remain
	UserStatusInactive UserStatus = "inactive"
)

// User is the user model. PasswordHash is never serialized.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID           int64    `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Email        string   `bun:"email,notnull,unique" json:"email,omitempty"`
	Name         string   `bun:"name,notnull" json:"name,omitempty"`
	Team         string   `bun:"team" json:"team,omitempty"`
	PasswordHash string   `bun:"password_hash,notnull" json:"-"`
	Role         UserRole `bun:"user_role,notnull" json:"role,omitempty"`

	// Capability flags, orthogonal to Role. Each gates access to its
	// feature area regardless of role.
	PermissionEvidence bool `bun:"permission_evidence,notnull" json:"permission_evidence"`
	PermissionVuln     bool `bun:"permission_vuln,notnull" json:"permission_vuln"`

	Status      UserStatus `bun:"status,notnull" json:"status,omitempty"`
	LastLoginAt *time.Time `bun:"last_login_at,nullzero" json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at,omitempty"`
}

// IsActive reports whether the user may authenticate or act as the
// current actor.
func (u *User) IsActive() bool {
	return u != nil && u.Status == UserStatusActive
}

// EnsureDefaults fills zero-value fields with the platform defaults:
// developer role, active status.
func (u *User) EnsureDefaults() {
	if u == nil {
		return
	}

	if u.Role == "" {
		u.Role = RoleDeveloper
	}

	if u.Status == "" {
		u.Status = UserStatusActive
	}
}

// NormalizeEmail lowers and trims an email address so lookups and the
// uniqueness constraint compare case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
