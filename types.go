package auth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	TokenService() TokenService
}

// TokenService issues and validates signed session tokens
type TokenService interface {
	Issue(user *User) (string, time.Time, error)
	IssueWithTTL(user *User, ttl time.Duration) (string, time.Time, error)
	Validate(tokenString string) (*SessionClaims, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	Hash(password string) (string, error)
	Compare(password, hash string) error
}

// Resolver reconstructs the acting user from a bearer credential
type Resolver interface {
	Resolve(ctx context.Context, bearer string) (*User, error)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetTokenTTL() time.Duration
	GetBcryptCost() int
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
