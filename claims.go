package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the session token payload: integer subject id, role
// snapshot at issuance, and absolute expiry. The role claim exists for
// defense in depth only; authorization always re-reads the live record.
type SessionClaims struct {
	UserID   int64            `json:"sub"`
	UserRole string           `json:"role"`
	Expiry   *jwt.NumericDate `json:"exp"`
	Issued   *jwt.NumericDate `json:"iat,omitempty"`
	TokenID  string           `json:"jti,omitempty"`
}

// Verify interface compliance
var _ jwt.Claims = (*SessionClaims)(nil)

// GetExpirationTime implements jwt.Claims
func (c *SessionClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	return c.Expiry, nil
}

// GetIssuedAt implements jwt.Claims
func (c *SessionClaims) GetIssuedAt() (*jwt.NumericDate, error) {
	return c.Issued, nil
}

// GetNotBefore implements jwt.Claims
func (c *SessionClaims) GetNotBefore() (*jwt.NumericDate, error) {
	return nil, nil
}

// GetIssuer implements jwt.Claims
func (c *SessionClaims) GetIssuer() (string, error) {
	return "", nil
}

// GetSubject implements jwt.Claims
func (c *SessionClaims) GetSubject() (string, error) {
	return strconv.FormatInt(c.UserID, 10), nil
}

// GetAudience implements jwt.Claims
func (c *SessionClaims) GetAudience() (jwt.ClaimStrings, error) {
	return nil, nil
}

// Subject returns the user id the token was issued for
func (c *SessionClaims) Subject() int64 {
	return c.UserID
}

// Role returns the role snapshot embedded at issuance
func (c *SessionClaims) Role() string {
	return c.UserRole
}

// Expires returns the expiration time
func (c *SessionClaims) Expires() time.Time {
	if c.Expiry != nil {
		return c.Expiry.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *SessionClaims) IssuedAt() time.Time {
	if c.Issued != nil {
		return c.Issued.Time
	}
	return time.Time{}
}
