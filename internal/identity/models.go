package identity

import (
	"time"

	"civicreport-platform/internal/auth"
)

// User is the account record behind a verified identity. Password
// hashing and lookup live here; token issuance consumes only the
// Identity projection.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Roles        []string
	DepartmentID *int64
	Active       bool
	CreatedAt    time.Time
}

// Identity projects the claims payload embedded at issuance.
func (u User) Identity() auth.Identity {
	return auth.Identity{
		UserID:       u.ID,
		Email:        u.Email,
		Roles:        u.Roles,
		DepartmentID: u.DepartmentID,
	}
}
