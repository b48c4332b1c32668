package auth

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the hashing cost used when none is configured.
// Bcrypt embeds a per-hash random salt, so equal plaintexts never produce
// equal digests, and comparison is constant time.
const DefaultBcryptCost = 14

// PasswordHasher hashes and verifies passwords with an injected cost so
// tests can run with cheap parameters.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher with the given bcrypt cost. Costs
// outside bcrypt's supported range fall back to DefaultBcryptCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash will generate a password hash
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	return string(digest), err
}

// Compare will validate the given cleartext password matches the hashed
// password. Any failure, including a malformed digest, returns
// ErrMismatchedHashAndPassword so verification fails closed.
func (h *PasswordHasher) Compare(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		// bcrypt distinguishes mismatches from malformed digests; both
		// collapse here so callers stay on their denial path.
		return ErrMismatchedHashAndPassword
	}
	return nil
}

var _ PasswordAuthenticator = (*PasswordHasher)(nil)

// RandomPasswordHash is a temporary password
func RandomPasswordHash() string {
	pwd := uuid.New()

	h, err := NewPasswordHasher(DefaultBcryptCost).Hash(pwd.String())
	if err != nil {
		return RandomPasswordHash()
	}

	return h
}
