package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// DefaultTokenTTL is one workday session
const DefaultTokenTTL = 8 * time.Hour

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	method     jwt.SigningMethod
	ttl        time.Duration
	logger     Logger
	now        func() time.Time
}

// NewTokenService creates a new TokenService instance. A non-positive ttl
// falls back to DefaultTokenTTL.
func NewTokenService(signingKey []byte, ttl time.Duration, logger Logger) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenServiceImpl{
		signingKey: signingKey,
		method:     jwt.SigningMethodHS256,
		ttl:        ttl,
		logger:     logger,
		now:        time.Now,
	}
}

// WithSigningMethod selects the signing method by its algorithm name
// (HS256, HS384, HS512). Names outside the HMAC family are ignored and
// HS256 stays in effect; Validate pins the HMAC family either way.
func (ts *TokenServiceImpl) WithSigningMethod(alg string) *TokenServiceImpl {
	if method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC); ok {
		ts.method = method
	}
	return ts
}

// WithClock injects a custom clock (useful for tests)
func (ts *TokenServiceImpl) WithClock(clock func() time.Time) *TokenServiceImpl {
	if clock != nil {
		ts.now = clock
	}
	return ts
}

// Issue signs a session token for the user with the configured TTL
func (ts *TokenServiceImpl) Issue(user *User) (string, time.Time, error) {
	return ts.IssueWithTTL(user, ts.ttl)
}

// IssueWithTTL signs a session token for the user expiring after ttl
func (ts *TokenServiceImpl) IssueWithTTL(user *User, ttl time.Duration) (string, time.Time, error) {
	if user == nil {
		return "", time.Time{}, goerrors.New("user must not be nil", goerrors.CategoryInternal)
	}
	if ttl <= 0 {
		ttl = ts.ttl
	}

	now := ts.now()
	expiresAt := now.Add(ttl)

	claims := &SessionClaims{
		UserID:   user.ID,
		UserRole: string(user.Role),
		Expiry:   jwt.NewNumericDate(expiresAt),
		Issued:   jwt.NewNumericDate(now),
		TokenID:  uuid.NewString(),
	}

	token := jwt.NewWithClaims(ts.method, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", time.Time{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign session token")
	}

	return signed, expiresAt, nil
}

// Validate parses and validates a token string, returning structured
// claims. Malformed tokens, bad signatures, and expired tokens all return
// ErrTokenInvalid; the distinct cause is only logged so callers cannot be
// used as an oracle.
func (ts *TokenServiceImpl) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, ErrTokenInvalid
		}
		return ts.signingKey, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(ts.now))

	if err != nil {
		switch {
		case goerrors.Is(err, jwt.ErrTokenExpired):
			ts.logger.Debug("TokenService validate rejected expired token")
		case goerrors.Is(err, jwt.ErrTokenSignatureInvalid):
			ts.logger.Error("TokenService validate rejected token with invalid signature")
		default:
			ts.logger.Debug("TokenService validate rejected malformed token", "error", err)
		}
		return nil, ErrTokenInvalid
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode claims")
	return nil, ErrTokenInvalid
}

var _ TokenService = (*TokenServiceImpl)(nil)
