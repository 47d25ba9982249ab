package identity

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// PostgresRepo reads user records via database/sql (pgx stdlib driver).
//
// Assumed schema:
//
//	CREATE TABLE users (
//	    id            BIGSERIAL PRIMARY KEY,
//	    email         TEXT NOT NULL UNIQUE,
//	    password_hash TEXT NOT NULL,
//	    roles         TEXT[] NOT NULL DEFAULT '{}',
//	    department_id BIGINT,
//	    active        BOOLEAN NOT NULL DEFAULT TRUE,
//	    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	// roles flattened in SQL; database/sql has no native text[] scan.
	const q = `
SELECT id, email, password_hash, array_to_string(roles, ','), department_id, active, created_at
FROM users
WHERE lower(email) = lower($1)
`
	var (
		u      User
		roles  string
		deptID sql.NullInt64
	)
	if err := r.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&roles,
		&deptID,
		&u.Active,
		&u.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	if roles != "" {
		u.Roles = strings.Split(roles, ",")
	}
	if deptID.Valid {
		u.DepartmentID = &deptID.Int64
	}
	return u, nil
}
