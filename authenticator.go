package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// LoginResult is a successful session: the signed token and the user it
// was issued for.
type LoginResult struct {
	Token     string    `json:"access_token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

// Auther verifies credentials against the users repository and issues
// session tokens.
type Auther struct {
	repo         RepositoryManager
	hasher       PasswordAuthenticator
	tokenService TokenService
	logger       Logger
	activitySink ActivitySink
}

// NewAuthenticator returns a new Authenticator wired from config
func NewAuthenticator(repo RepositoryManager, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenTTL(),
		defLogger{},
	).WithSigningMethod(opts.GetSigningMethod())

	return &Auther{
		repo:         repo,
		hasher:       NewPasswordHasher(opts.GetBcryptCost()),
		tokenService: tokenService,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithTokenService overrides the token service built from config.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// WithPasswordHasher overrides the hasher built from config.
func (s *Auther) WithPasswordHasher(hasher PasswordAuthenticator) *Auther {
	if hasher != nil {
		s.hasher = hasher
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the email/password pair, records the login time, and
// issues a session token. Unknown email, wrong password, and inactive
// account all surface as the same ErrInvalidCredentials; only the logs
// and the activity sink record which check failed.
func (s *Auther) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	identifier := NormalizeEmail(email)

	user, err := s.repo.Users().GetByEmail(ctx, identifier)
	if err != nil {
		if IsNotFoundError(err) {
			s.logger.Debug("Login rejected unknown email")
			s.emitAuthEvent(ctx, ActivityEventLoginFailure, 0, map[string]any{
				"reason": "unknown_email",
			})
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Login user lookup error", "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during login")
	}

	if err := s.hasher.Compare(password, user.PasswordHash); err != nil {
		s.logger.Debug("Login rejected wrong password", "user_id", user.ID)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, user.ID, map[string]any{
			"reason": "password_mismatch",
		})
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive() {
		s.logger.Debug("Login blocked due to user status", "user_id", user.ID, "status", user.Status)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, user.ID, map[string]any{
			"reason": "inactive_account",
		})
		return nil, ErrInvalidCredentials
	}

	if err := s.repo.Users().TrackSuccessfulLogin(ctx, user); err != nil {
		s.logger.Error("Login failed to record login time", "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to record login time")
	}

	token, expiresAt, err := s.tokenService.Issue(user)
	if err != nil {
		s.logger.Error("Login failed to issue token", "error", err)
		return nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, user.ID, nil)

	return &LoginResult{
		Token:     token,
		TokenType: "bearer",
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, userID int64, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)

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
		s.logger.Error("activity sink record error", "error", err)
	}
}

var _ Authenticator = (*Auther)(nil)
