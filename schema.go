package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// CreateSchema creates the users table and its case-insensitive email
// uniqueness index. Used by tests and the seed bootstrap; production
// deployments run the same DDL through their migration pipeline.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create users table")
	}

	// Uniqueness must hold across letter case, so the index covers
	// lower(email) rather than the raw column.
	if _, err := db.ExecContext(ctx,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_idx ON users (lower(email))`,
	); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create email uniqueness index")
	}

	return nil
}
