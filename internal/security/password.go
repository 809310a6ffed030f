package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the work factor used for stored password hashes.
const DefaultCost = 12

var ErrPasswordMismatch = errors.New("password does not match")

// decoyHash is compared against when no account exists so that unknown
// emails cost as much as wrong passwords.
var decoyHash, _ = bcrypt.GenerateFromPassword([]byte("decoy-password"), bcrypt.MinCost)

// HashPassword hashes a credential with bcrypt. Costs outside bcrypt's range
// fall back to DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword returns ErrPasswordMismatch for a wrong password and any other
// error for an unusable hash.
func CheckPassword(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}

// SpendCompare burns one bcrypt comparison for a login whose email is unknown.
func SpendCompare(plain string) {
	_ = bcrypt.CompareHashAndPassword(decoyHash, []byte(plain))
}
