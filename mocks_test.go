package auth_test

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	auth "github.com/secuhub/go-auth"
	"github.com/uptrace/bun"
)

// memUsers is an in-memory Users store that mimics the storage layer's
// behavior, including the authoritative email uniqueness constraint.
type memUsers struct {
	mu   sync.Mutex
	seq  int64
	byID map[int64]*auth.User
}

var _ auth.Users = (*memUsers)(nil)

func newMemUsers() *memUsers {
	return &memUsers{byID: map[int64]*auth.User{}}
}

func cloneUser(u *auth.User) *auth.User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.LastLoginAt != nil {
		at := *u.LastLoginAt
		clone.LastLoginAt = &at
	}
	return &clone
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.byID[id]; ok {
		return cloneUser(u), nil
	}
	return nil, auth.ErrUserNotFound
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u := m.findByEmail(email); u != nil {
		return cloneUser(u), nil
	}
	return nil, auth.ErrUserNotFound
}

func (m *memUsers) findByEmail(email string) *auth.User {
	normalized := auth.NormalizeEmail(email)
	for _, u := range m.byID {
		if auth.NormalizeEmail(u.Email) == normalized {
			return u
		}
	}
	return nil
}

func (m *memUsers) Create(ctx context.Context, record *auth.User) (*auth.User, error) {
	return m.CreateTx(ctx, nil, record)
}

func (m *memUsers) CreateTx(_ context.Context, _ bun.IDB, record *auth.User) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record.EnsureDefaults()
	record.Email = auth.NormalizeEmail(record.Email)

	if m.findByEmail(record.Email) != nil {
		return nil, auth.ErrEmailTaken
	}

	m.seq++
	record.ID = m.seq
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	m.byID[record.ID] = cloneUser(record)
	return cloneUser(record), nil
}

func (m *memUsers) Update(ctx context.Context, record *auth.User) (*auth.User, error) {
	return m.UpdateTx(ctx, nil, record)
}

func (m *memUsers) UpdateTx(_ context.Context, _ bun.IDB, record *auth.User) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.byID[record.ID]
	if !ok {
		return nil, auth.ErrUserNotFound
	}

	stored.Name = record.Name
	stored.Team = record.Team
	stored.Role = record.Role
	stored.PermissionEvidence = record.PermissionEvidence
	stored.PermissionVuln = record.PermissionVuln
	stored.Status = record.Status
	stored.UpdatedAt = time.Now()

	return cloneUser(stored), nil
}

func (m *memUsers) List(_ context.Context, filter auth.ListUsersFilter) ([]*auth.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := []*auth.User{}
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	for _, u := range m.byID {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		if search != "" {
			name := strings.ToLower(u.Name)
			email := strings.ToLower(u.Email)
			if !strings.Contains(name, search) && !strings.Contains(email, search) {
				continue
			}
		}
		matched = append(matched, cloneUser(u))
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)

	limit := filter.Limit
	if limit < 1 {
		limit = auth.DefaultListLimit
	}
	offset := filter.Offset
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return matched[offset:end], total, nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.byID[id]
	if !ok {
		return auth.ErrUserNotFound
	}

	stored.PasswordHash = passwordHash
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *memUsers) UpdateStatus(_ context.Context, id int64, status auth.UserStatus) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.byID[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}

	stored.Status = status
	stored.UpdatedAt = time.Now()
	return cloneUser(stored), nil
}

func (m *memUsers) TrackSuccessfulLogin(_ context.Context, user *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.byID[user.ID]
	if !ok {
		return auth.ErrUserNotFound
	}

	now := time.Now()
	stored.LastLoginAt = &now
	stored.UpdatedAt = now
	user.LastLoginAt = &now
	return nil
}

func (m *memUsers) Approvers(_ context.Context) ([]*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := []*auth.User{}
	for _, u := range m.byID {
		if u.Status != auth.UserStatusActive {
			continue
		}
		if u.Role != auth.RoleAdmin && u.Role != auth.RoleApprover {
			continue
		}
		matched = append(matched, cloneUser(u))
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return matched, nil
}

func (m *memUsers) Developers(_ context.Context, team string) ([]*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := []*auth.User{}
	for _, u := range m.byID {
		if u.Status != auth.UserStatusActive || u.Role != auth.RoleDeveloper {
			continue
		}
		if team != "" && u.Team != team {
			continue
		}
		matched = append(matched, cloneUser(u))
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return matched, nil
}

// memRepo implements auth.RepositoryManager over the in-memory store
type memRepo struct {
	users *memUsers
}

var _ auth.RepositoryManager = (*memRepo)(nil)

func newMemRepo() *memRepo {
	return &memRepo{users: newMemUsers()}
}

func (r *memRepo) Users() auth.Users { return r.users }

func (r *memRepo) Validate() error { return nil }

func (r *memRepo) MustValidate() {}

func (r *memRepo) RunInTx(ctx context.Context, _ *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

// captureSink records activity events for assertions
type captureSink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
}

func (s *captureSink) Record(_ context.Context, event auth.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *captureSink) Events() []auth.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]auth.ActivityEvent, len(s.events))
	copy(out, s.events)
	return out
}

// testConfig is a fixed Config for tests: deterministic secret, short
// bcrypt cost, default TTL.
type testConfig struct {
	signingKey string
	method     string
	ttl        time.Duration
	cost       int
}

func (c testConfig) GetSigningKey() string      { return c.signingKey }
func (c testConfig) GetSigningMethod() string   { return c.method }
func (c testConfig) GetTokenTTL() time.Duration { return c.ttl }
func (c testConfig) GetBcryptCost() int         { return c.cost }

func newTestConfig() testConfig {
	return testConfig{
		signingKey: "test-signing-key",
		method:     "HS256",
		ttl:        auth.DefaultTokenTTL,
		cost:       4,
	}
}

func seedActiveUser(repo *memRepo, email, password string, mutate ...func(*auth.User)) *auth.User {
	hasher := auth.NewPasswordHasher(4)
	hash, err := hasher.Hash(password)
	if err != nil {
		panic(err)
	}

	user := &auth.User{
		Email:          email,
		Name:           "Test User",
		Team:           "Backend",
		PasswordHash:   hash,
		Role:           auth.RoleDeveloper,
		PermissionVuln: true,
		Status:         auth.UserStatusActive,
	}

	for _, fn := range mutate {
		fn(user)
	}

	created, err := repo.Users().Create(context.Background(), user)
	if err != nil {
		panic(err)
	}
	return created
}
