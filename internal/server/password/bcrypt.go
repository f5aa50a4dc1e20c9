// Package password hashes and verifies user passwords with bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrEmptyPassword = errors.New("password must not be empty")

// Verifier hashes and compares passwords using a work factor fixed at
// construction.
type Verifier struct {
	cost int
}

// NewVerifier returns a Verifier using cost. The cost must lie within
// [bcrypt.MinCost, bcrypt.MaxCost].
func NewVerifier(cost int) (*Verifier, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", cost)
	}
	return &Verifier{cost: cost}, nil
}

// Hash returns a salted bcrypt hash of password.
func (v *Verifier) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), v.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Compare reports whether password matches hash. A malformed hash simply
// does not match.
func (v *Verifier) Compare(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Cost returns the configured work factor.
func (v *Verifier) Cost() int {
	return v.cost
}
