package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

func boolPtr(v bool) *bool { return &v }

// DefaultSeedUsers are the demo accounts for development environments:
// one security admin, two team-lead approvers, and developers spread
// across teams.
var DefaultSeedUsers = []UserCreate{
	{
		Email:              "admin@company.com",
		Name:               "Security Admin",
		Password:           "admin1234",
		Team:               "Security",
		Role:               RoleAdmin,
		PermissionEvidence: boolPtr(true),
		PermissionVuln:     boolPtr(true),
	},
	{
		Email:          "park_tl@company.com",
		Name:           "Backend Lead",
		Password:       "park1234",
		Team:           "Backend",
		Role:           RoleApprover,
		PermissionVuln: boolPtr(true),
	},
	{
		Email:          "kim_tl@company.com",
		Name:           "Frontend Lead",
		Password:       "kim12345",
		Team:           "Frontend",
		Role:           RoleApprover,
		PermissionVuln: boolPtr(true),
	},
	{
		Email:          "kim@company.com",
		Name:           "Backend Dev",
		Password:       "dev12345",
		Team:           "Backend",
		Role:           RoleDeveloper,
		PermissionVuln: boolPtr(true),
	},
	{
		Email:              "lee@company.com",
		Name:               "Security Engineer",
		Password:           "dev12345",
		Team:               "Security",
		Role:               RoleDeveloper,
		PermissionEvidence: boolPtr(true),
		PermissionVuln:     boolPtr(true),
	},
	{
		Email:          "park_dev@company.com",
		Name:           "Backend Dev Two",
		Password:       "dev12345",
		Team:           "Backend",
		Role:           RoleDeveloper,
		PermissionVuln: boolPtr(true),
	},
	{
		Email:          "choi@company.com",
		Name:           "Infra Engineer",
		Password:       "dev12345",
		Team:           "Infra",
		Role:           RoleDeveloper,
		PermissionVuln: boolPtr(true),
	},
}

// SeedUsers creates any missing demo accounts. Accounts that already
// exist are left untouched, so repeated runs are safe.
func SeedUsers(ctx context.Context, manager *UserManager, users ...UserCreate) (int, error) {
	if len(users) == 0 {
		users = DefaultSeedUsers
	}

	created := 0
	for _, input := range users {
		if _, err := manager.Create(ctx, input); err != nil {
			if goerrors.Is(err, ErrEmailTaken) {
				continue
			}
			return created, err
		}
		created++
	}

	return created, nil
}
