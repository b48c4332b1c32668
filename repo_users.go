package auth

import (
	"context"
	"database/sql"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// DefaultListLimit is the page size applied when a filter carries none
const DefaultListLimit = 20

// ListUsersFilter narrows List results. Zero values mean "no filter".
// Search matches name or email, case-insensitively, as a substring.
type ListUsersFilter struct {
	Role   UserRole
	Status UserStatus
	Search string
	Offset int
	Limit  int
}

// PageFilter converts 1-based page/size pagination into a filter
func PageFilter(page, size int) ListUsersFilter {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultListLimit
	}
	return ListUsersFilter{
		Offset: (page - 1) * size,
		Limit:  size,
	}
}

func (f ListUsersFilter) normalized() ListUsersFilter {
	if f.Limit < 1 {
		f.Limit = DefaultListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Users is the durable store of user records consumed by the auth core
type Users interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	Create(ctx context.Context, record *User) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)
	Update(ctx context.Context, record *User) (*User, error)
	UpdateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)

	List(ctx context.Context, filter ListUsersFilter) ([]*User, int, error)

	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateStatus(ctx context.Context, id int64, status UserStatus) (*User, error)
	TrackSuccessfulLogin(ctx context.Context, user *User) error

	Approvers(ctx context.Context) ([]*User, error)
	Developers(ctx context.Context, team string) ([]*User, error)
}

type users struct {
	db *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository returns the bun-backed Users store
func NewUsersRepository(db *bun.DB) Users {
	return &users{db: db}
}

func (a *users) GetByID(ctx context.Context, id int64) (*User, error) {
	record := &User{}

	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		return nil, translateSelectError(err, map[string]any{"id": id})
	}

	return record, nil
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	record := &User{}

	err := a.db.NewSelect().
		Model(record).
		Where("lower(?TableAlias.email) = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		return nil, translateSelectError(err, map[string]any{"email": NormalizeEmail(email)})
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User) (*User, error) {
	return a.CreateTx(ctx, a.db, record)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	record.EnsureDefaults()
	record.Email = NormalizeEmail(record.Email)

	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		// The unique index is the authoritative duplicate-email guard;
		// the manager's pre-check only fails fast.
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to insert user")
	}

	return record, nil
}

func (a *users) Update(ctx context.Context, record *User) (*User, error) {
	return a.UpdateTx(ctx, a.db, record)
}

// UpdateTx persists mutable attributes of the record. The password digest
// and email are deliberately not writable through this path.
func (a *users) UpdateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	record.UpdatedAt = time.Now()

	res, err := tx.NewUpdate().
		Model(record).
		Column("name", "team", "user_role", "permission_evidence", "permission_vuln", "status", "updated_at").
		WherePK().
		Exec(ctx)

	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrUserNotFound
	}

	return record, nil
}

func (a *users) List(ctx context.Context, filter ListUsersFilter) ([]*User, int, error) {
	filter = filter.normalized()

	records := []*User{}

	q := a.db.NewSelect().Model(&records)
	q = applyUsersFilter(q, filter)

	// ScanAndCount runs the count without limit/offset so the total is
	// independent of the requested page.
	total, err := q.
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		ScanAndCount(ctx)

	if err != nil {
		return nil, 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list users")
	}

	return records, total, nil
}

func applyUsersFilter(q *bun.SelectQuery, filter ListUsersFilter) *bun.SelectQuery {
	if filter.Role != "" {
		q = q.Where("?TableAlias.user_role = ?", filter.Role)
	}

	if filter.Status != "" {
		q = q.Where("?TableAlias.status = ?", filter.Status)
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("lower(?TableAlias.name) LIKE ?", pattern).
				WhereOr("lower(?TableAlias.email) LIKE ?", pattern)
		})
	}

	return q
}

// UpdatePassword replaces the stored digest wholesale
func (a *users) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("updated_at = ?", time.Now()).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update password")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (a *users) UpdateStatus(ctx context.Context, id int64, status UserStatus) (*User, error) {
	res, err := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now()).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user status")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrUserNotFound
	}

	return a.GetByID(ctx, id)
}

// TrackSuccessfulLogin records the login time as a durable write and
// mirrors it onto the in-memory record.
func (a *users) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	loggedInAt := time.Now()

	res, err := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("last_login_at = ?", loggedInAt).
		Set("updated_at = ?", loggedInAt).
		Where("?TableAlias.id = ?", user.ID).
		Exec(ctx)

	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to record login time")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrUserNotFound
	}

	user.LastLoginAt = &loggedInAt
	user.UpdatedAt = loggedInAt

	return nil
}

// Approvers returns active users who can sign off remediation work,
// ordered by name.
func (a *users) Approvers(ctx context.Context) ([]*User, error) {
	records := []*User{}

	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_role IN (?)", bun.In([]UserRole{RoleAdmin, RoleApprover})).
		Where("?TableAlias.status = ?", UserStatusActive).
		Order("name ASC").
		Scan(ctx)

	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list approvers")
	}

	return records, nil
}

// Developers returns active developers, optionally narrowed by team,
// ordered by name.
func (a *users) Developers(ctx context.Context, team string) ([]*User, error) {
	records := []*User{}

	q := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_role = ?", RoleDeveloper).
		Where("?TableAlias.status = ?", UserStatusActive)

	if team != "" {
		q = q.Where("?TableAlias.team = ?", team)
	}

	if err := q.Order("name ASC").Scan(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list developers")
	}

	return records, nil
}

func translateSelectError(err error, metadata map[string]any) error {
	if goerrors.Is(err, sql.ErrNoRows) {
		clone := ErrUserNotFound.Clone()
		if clone == nil {
			return ErrUserNotFound
		}
		clone.Source = ErrUserNotFound
		return clone.WithMetadata(metadata)
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to query users")
}
