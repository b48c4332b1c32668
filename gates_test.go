package auth_test

import (
	"testing"

	auth "github.com/secuhub/go-auth"
	"github.com/stretchr/testify/assert"
)

func gateUser(role auth.UserRole, evidence, vuln bool) *auth.User {
	return &auth.User{
		ID:                 1,
		Role:               role,
		PermissionEvidence: evidence,
		PermissionVuln:     vuln,
		Status:             auth.UserStatusActive,
	}
}

func TestRequireRoles(t *testing.T) {
	tests := []struct {
		name    string
		gate    auth.Gate
		user    *auth.User
		wantErr error
	}{
		{
			name: "Admin allowed by admin gate",
			gate: auth.RequireAdmin,
			user: gateUser(auth.RoleAdmin, false, false),
		},
		{
			name:    "Developer denied by admin gate",
			gate:    auth.RequireAdmin,
			user:    gateUser(auth.RoleDeveloper, true, true),
			wantErr: auth.ErrForbidden,
		},
		{
			name: "Approver allowed by approver-or-admin gate",
			gate: auth.RequireApproverOrAdmin,
			user: gateUser(auth.RoleApprover, false, false),
		},
		{
			name:    "Developer denied by approver-or-admin gate",
			gate:    auth.RequireApproverOrAdmin,
			user:    gateUser(auth.RoleDeveloper, false, false),
			wantErr: auth.ErrForbidden,
		},
		{
			name:    "Nil user is unauthenticated",
			gate:    auth.RequireAdmin,
			user:    nil,
			wantErr: auth.ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.gate(tt.user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequirePermissions(t *testing.T) {
	tests := []struct {
		name    string
		gate    auth.Gate
		user    *auth.User
		wantErr error
	}{
		{
			name: "Evidence flag allows evidence gate",
			gate: auth.RequireEvidenceAccess,
			user: gateUser(auth.RoleDeveloper, true, false),
		},
		{
			name:    "Admin without evidence flag is denied",
			gate:    auth.RequireEvidenceAccess,
			user:    gateUser(auth.RoleAdmin, false, true),
			wantErr: auth.ErrForbidden,
		},
		{
			name: "Vuln flag allows vuln gate",
			gate: auth.RequireVulnAccess,
			user: gateUser(auth.RoleDeveloper, false, true),
		},
		{
			name:    "Missing vuln flag is denied",
			gate:    auth.RequireVulnAccess,
			user:    gateUser(auth.RoleApprover, true, false),
			wantErr: auth.ErrForbidden,
		},
		{
			name: "AND semantics require every flag",
			gate: auth.RequirePermissions(auth.PermissionSpec{Evidence: true, Vuln: true}),
			user: gateUser(auth.RoleDeveloper, true, true),
		},
		{
			name:    "AND semantics deny when one flag is missing",
			gate:    auth.RequirePermissions(auth.PermissionSpec{Evidence: true, Vuln: true}),
			user:    gateUser(auth.RoleDeveloper, true, false),
			wantErr: auth.ErrForbidden,
		},
		{
			name:    "Nil user is unauthenticated",
			gate:    auth.RequireVulnAccess,
			user:    nil,
			wantErr: auth.ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.gate(tt.user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAllOf(t *testing.T) {
	gate := auth.AllOf(auth.RequireApproverOrAdmin, auth.RequireVulnAccess)

	assert.NoError(t, gate(gateUser(auth.RoleAdmin, false, true)))
	assert.ErrorIs(t, gate(gateUser(auth.RoleAdmin, false, false)), auth.ErrForbidden)
	assert.ErrorIs(t, gate(gateUser(auth.RoleDeveloper, false, true)), auth.ErrForbidden)

	// Nil gates are skipped.
	assert.NoError(t, auth.AllOf(nil, auth.RequireVulnAccess)(gateUser(auth.RoleDeveloper, false, true)))
}
