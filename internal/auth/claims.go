package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Identity is the subject envelope embedded in every token: the fields
// that survive a rotation. Session-scoped fields (jti, iat, exp) live in
// RegisteredClaims and are minted fresh on every issuance, so re-issuing
// from an Identity can never accidentally carry them forward.
type Identity struct {
	UserID       int64    `json:"user_id"`
	Email        string   `json:"email"`
	Roles        []string `json:"roles"`
	DepartmentID *int64   `json:"department_id,omitempty"`
}

// HasAnyRole reports whether the identity holds at least one of the
// given role tags.
func (id Identity) HasAnyRole(roles ...string) bool {
	for _, want := range roles {
		for _, have := range id.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Claims are the only supported JWT claims shape for this service.
// The jti (RegisteredClaims.ID) is unique per issuance event and is the
// unit of revocation; access and refresh tokens from the same login
// share it.
type Claims struct {
	jwt.RegisteredClaims
	Identity

	TokenType TokenType `json:"token_type"`
}
