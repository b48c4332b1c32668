// Package auth is the identity and access-control core of the SecuHub
// security-operations platform: it authenticates users, issues and
// validates session tokens, and enforces role- and permission-based
// gates on every protected operation.
//
// Sessions:
//   - Auther verifies email/password pairs against the bun-backed users
//     repository and issues HS256 session tokens via TokenService. The
//     three login failure causes (unknown email, wrong password,
//     inactive account) collapse into one ErrInvalidCredentials so the
//     endpoint cannot be used for account enumeration.
//   - ActorResolver turns a bearer token back into the acting user once
//     per request. It always re-reads the live record: role, permission,
//     and status changes take effect on the next request, and a token
//     for a deactivated account stops resolving immediately.
//
// Authorization:
//   - Gates are pure predicates over the resolved actor. RequireRoles
//     checks role-set membership; RequirePermissions checks capability
//     flags with AND semantics. Flags are orthogonal to roles: an admin
//     without evidence access is denied evidence operations.
//
// Lifecycle:
//   - UserManager owns creation (email uniqueness backed by the storage
//     constraint), pointer-field patch updates, verified password
//     changes, deactivation, and filtered listing.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter for login and
//     lifecycle events. Sinks run best-effort (errors are logged) so you
//     can forward to a database or queue without blocking authentication.
package auth
