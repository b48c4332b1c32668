package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// UserCreate is the payload for registering a user. Permission flag
// pointers distinguish "unset, use default" from an explicit false.
type UserCreate struct {
	Email              string   `json:"email"`
	Name               string   `json:"name"`
	Team               string   `json:"team"`
	Password           string   `json:"password"`
	Role               UserRole `json:"role"`
	PermissionEvidence *bool    `json:"permission_evidence"`
	PermissionVuln     *bool    `json:"permission_vuln"`
}

func (p UserCreate) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, validation.Length(6, 255), is.Email),
		validation.Field(&p.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.Team, validation.Length(0, 100)),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&p.Role, validation.In(RoleAdmin, RoleApprover, RoleDeveloper)),
	)
}

// UserUpdate is a patch: only non-nil fields are applied. The password
// digest is not reachable through this path, and status transitions go
// through Deactivate.
type UserUpdate struct {
	Name               *string   `json:"name"`
	Team               *string   `json:"team"`
	Role               *UserRole `json:"role"`
	PermissionEvidence *bool     `json:"permission_evidence"`
	PermissionVuln     *bool     `json:"permission_vuln"`
}

func (p UserUpdate) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&p.Role, validation.In(RoleAdmin, RoleApprover, RoleDeveloper)),
	)
}

// PasswordChange carries the verified current password and the new one
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (p PasswordChange) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.CurrentPassword, validation.Required),
		validation.Field(&p.NewPassword, validation.Required, validation.Length(8, 100)),
	)
}

// UserManager drives the user lifecycle: creation, partial update,
// password change, deactivation, and listing.
type UserManager struct {
	repo         RepositoryManager
	hasher       PasswordAuthenticator
	logger       Logger
	activitySink ActivitySink
}

// NewUserManager returns a lifecycle manager over the given store
func NewUserManager(repo RepositoryManager, hasher PasswordAuthenticator) *UserManager {
	return &UserManager{
		repo:         repo,
		hasher:       hasher,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (m *UserManager) WithLogger(logger Logger) *UserManager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// WithActivitySink configures an ActivitySink for emitting lifecycle events.
func (m *UserManager) WithActivitySink(sink ActivitySink) *UserManager {
	m.activitySink = normalizeActivitySink(sink)
	return m
}

// Create registers a user. The email pre-check fails fast; the storage
// uniqueness constraint remains the authoritative guard, so concurrent
// creations with the same email yield exactly one success.
func (m *UserManager) Create(ctx context.Context, input UserCreate) (*User, error) {
	if err := input.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid user payload")
	}

	email := NormalizeEmail(input.Email)

	if _, err := m.repo.Users().GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !IsNotFoundError(err) {
		return nil, err
	}

	passwordHash, err := m.hasher.Hash(input.Password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	record := &User{
		Email:          email,
		Name:           input.Name,
		Team:           input.Team,
		PasswordHash:   passwordHash,
		Role:           input.Role,
		PermissionVuln: true,
		Status:         UserStatusActive,
	}
	record.EnsureDefaults()

	if input.PermissionEvidence != nil {
		record.PermissionEvidence = *input.PermissionEvidence
	}
	if input.PermissionVuln != nil {
		record.PermissionVuln = *input.PermissionVuln
	}

	var created *User
	err = m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := m.repo.Users().CreateTx(ctx, tx, record)
		if err != nil {
			return err
		}
		created = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.emitEvent(ctx, ActivityEventUserCreated, created.ID, map[string]any{
		"role": created.Role,
	})

	return created, nil
}

// Update applies the non-nil patch fields and persists the record
func (m *UserManager) Update(ctx context.Context, id int64, patch UserUpdate) (*User, error) {
	if err := patch.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid update payload")
	}

	user, err := m.repo.Users().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Team != nil {
		user.Team = *patch.Team
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if patch.PermissionEvidence != nil {
		user.PermissionEvidence = *patch.PermissionEvidence
	}
	if patch.PermissionVuln != nil {
		user.PermissionVuln = *patch.PermissionVuln
	}

	updated, err := m.repo.Users().Update(ctx, user)
	if err != nil {
		return nil, err
	}

	m.emitEvent(ctx, ActivityEventUserUpdated, updated.ID, nil)

	return updated, nil
}

// ChangePassword verifies the current password and replaces the digest
// wholesale. A wrong current password leaves the stored digest untouched.
func (m *UserManager) ChangePassword(ctx context.Context, id int64, change PasswordChange) error {
	if err := change.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password payload")
	}

	user, err := m.repo.Users().GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := m.hasher.Compare(change.CurrentPassword, user.PasswordHash); err != nil {
		m.logger.Debug("ChangePassword rejected wrong current password", "user_id", id)
		return ErrInvalidCurrentPassword
	}

	passwordHash, err := m.hasher.Hash(change.NewPassword)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	if err := m.repo.Users().UpdatePassword(ctx, id, passwordHash); err != nil {
		return err
	}

	m.emitEvent(ctx, ActivityEventPasswordChanged, id, nil)

	return nil
}

// Deactivate locks the account. There is no reactivation path; tokens
// already issued for the user stop resolving on their next request. The
// second deactivation of the same user is a no-op.
func (m *UserManager) Deactivate(ctx context.Context, id int64) (*User, error) {
	user, err := m.repo.Users().UpdateStatus(ctx, id, UserStatusInactive)
	if err != nil {
		return nil, err
	}

	m.emitEvent(ctx, ActivityEventUserDeactivated, id, nil)

	return user, nil
}

// List returns the filtered page and a total count independent of the
// page limit.
func (m *UserManager) List(ctx context.Context, filter ListUsersFilter) ([]*User, int, error) {
	return m.repo.Users().List(ctx, filter)
}

// Approvers lists active admins and approvers for assignment pickers
func (m *UserManager) Approvers(ctx context.Context) ([]*User, error) {
	return m.repo.Users().Approvers(ctx)
}

// Developers lists active developers, optionally narrowed by team
func (m *UserManager) Developers(ctx context.Context, team string) ([]*User, error) {
	return m.repo.Users().Developers(ctx, team)
}

func (m *UserManager) emitEvent(ctx context.Context, eventType ActivityEventType, userID int64, metadata map[string]any) {
	sink := normalizeActivitySink(m.activitySink)

	event := ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: time.Now(),
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := sink.Record(ctx, event); err != nil {
		m.logger.Error("activity sink record error", "error", err)
	}
}
