package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ErrInvalidCredentials is the single login failure returned for unknown
// email, wrong password, and inactive account alike, so callers cannot
// enumerate accounts. Internal logs record the actual cause.
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS").
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenInvalid covers malformed, tampered, and expired session tokens.
// The causes deliberately collapse into one result.
var ErrTokenInvalid = goerrors.New("invalid or expired session token", goerrors.CategoryAuth).
	WithTextCode("TOKEN_INVALID").
	WithCode(goerrors.CodeUnauthorized)

// ErrUnauthenticated is returned when no valid actor can be resolved for
// a request: missing or invalid token, or a token whose subject no longer
// exists.
var ErrUnauthenticated = goerrors.New("authentication required", goerrors.CategoryAuth).
	WithTextCode("UNAUTHENTICATED").
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountInactive is returned when a valid token resolves to a user
// that has been deactivated since issuance.
var ErrAccountInactive = goerrors.New("account is deactivated", goerrors.CategoryAuthz).
	WithTextCode("ACCOUNT_INACTIVE").
	WithCode(goerrors.CodeForbidden)

// ErrForbidden is returned when the resolved actor's role or permission
// flags do not satisfy a gate.
var ErrForbidden = goerrors.New("insufficient permissions for this operation", goerrors.CategoryAuthz).
	WithTextCode("FORBIDDEN").
	WithCode(goerrors.CodeForbidden)

// ErrEmailTaken is returned when creating a user with an email already
// registered, regardless of the existing account's status.
var ErrEmailTaken = goerrors.New("email is already registered", goerrors.CategoryConflict).
	WithTextCode("EMAIL_TAKEN").
	WithCode(goerrors.CodeConflict)

// ErrInvalidCurrentPassword is returned by password changes when the
// supplied current password does not verify.
var ErrInvalidCurrentPassword = goerrors.New("current password does not match", goerrors.CategoryValidation).
	WithTextCode("INVALID_CURRENT_PASSWORD").
	WithCode(goerrors.CodeBadRequest)

// ErrUserNotFound is returned when an operation targets a user id that
// does not exist.
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode("USER_NOT_FOUND").
	WithCode(goerrors.CodeNotFound)

// ErrMismatchedHashAndPassword is the hasher's verification failure. A
// malformed digest collapses into the same result so verification always
// fails closed.
var ErrMismatchedHashAndPassword = goerrors.New("password does not match", goerrors.CategoryAuth).
	WithTextCode("PASSWORD_MISMATCH").
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString rejects empty plaintext passwords before hashing
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode("EMPTY_PASSWORD").
	WithCode(goerrors.CodeBadRequest)

// IsNotFoundError reports whether err represents a missing record
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	return goerrors.Is(err, ErrUserNotFound) || goerrors.IsNotFound(err)
}

// IsConflictError reports whether err is the email uniqueness conflict
func IsConflictError(err error) bool {
	return goerrors.Is(err, ErrEmailTaken)
}

// isUniqueViolation matches the driver-level uniqueness constraint error.
// The constraint is the authoritative guard against concurrent creation;
// the application pre-check only exists to fail fast.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
