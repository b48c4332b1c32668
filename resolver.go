package auth

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ActorResolver reconstructs the acting user for one request from a
// bearer token. It always fetches the live record so role, permission,
// and status changes take effect on the next request; no caching.
type ActorResolver struct {
	users        Users
	tokenService TokenService
	logger       Logger
}

// NewActorResolver returns a resolver over the given store and token service
func NewActorResolver(repo RepositoryManager, tokenService TokenService) *ActorResolver {
	return &ActorResolver{
		users:        repo.Users(),
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (r *ActorResolver) WithLogger(logger Logger) *ActorResolver {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Resolve validates the token, extracts the subject, and returns the live
// user record. Invalid tokens and missing users yield ErrUnauthenticated;
// a deactivated account yields ErrAccountInactive.
func (r *ActorResolver) Resolve(ctx context.Context, bearer string) (*User, error) {
	raw := StripBearerPrefix(bearer)
	if raw == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := r.tokenService.Validate(raw)
	if err != nil {
		r.logger.Debug("Resolve rejected token", "error", err)
		return nil, ErrUnauthenticated
	}

	if claims.Subject() == 0 {
		r.logger.Debug("Resolve rejected token without subject")
		return nil, ErrUnauthenticated
	}

	user, err := r.users.GetByID(ctx, claims.Subject())
	if err != nil {
		if IsNotFoundError(err) {
			r.logger.Debug("Resolve found no user for token subject", "user_id", claims.Subject())
			return nil, ErrUnauthenticated
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during resolution")
	}

	if !user.IsActive() {
		r.logger.Debug("Resolve blocked inactive account", "user_id", user.ID)
		return nil, ErrAccountInactive
	}

	return user, nil
}

// StripBearerPrefix accepts either a raw token or an Authorization header
// value and returns the token portion.
func StripBearerPrefix(value string) string {
	value = strings.TrimSpace(value)

	const scheme = "bearer "
	if len(value) > len(scheme) && strings.EqualFold(value[:len(scheme)], scheme) {
		return strings.TrimSpace(value[len(scheme):])
	}

	return value
}

var _ Resolver = (*ActorResolver)(nil)
