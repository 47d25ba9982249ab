package identity

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Repository is the persistence contract for user lookup.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
}

var ErrNotFound = errors.New("identity: user not found")

// ErrInvalidCredentials is the single outward signal for a failed
// login: unknown email, wrong password, and deactivated account all
// look identical to the caller.
var ErrInvalidCredentials = errors.New("identity: invalid credentials")

// dummyHash keeps lookup misses on the same bcrypt cost path as
// password mismatches.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Verifier owns credential validation: user lookup plus bcrypt compare.
type Verifier struct {
	repo Repository
}

func NewVerifier(repo Repository) *Verifier {
	return &Verifier{repo: repo}
}

// ValidateCredentials returns the user when email/password match an
// active account, ErrInvalidCredentials otherwise.
func (v *Verifier) ValidateCredentials(ctx context.Context, email, password string) (User, error) {
	u, err := v.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !u.Active {
		return User{}, ErrInvalidCredentials
	}

	return u, nil
}

// HashPassword produces a bcrypt hash suitable for User.PasswordHash.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
