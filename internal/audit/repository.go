package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo appends events via database/sql (pgx stdlib driver).
//
// Assumed schema:
//
//	CREATE TABLE auth_events (
//	    id         UUID PRIMARY KEY,
//	    type       TEXT NOT NULL,
//	    subject_id BIGINT,
//	    email      TEXT,
//	    jti        TEXT,
//	    ip_address TEXT,
//	    message    TEXT,
//	    created_at TIMESTAMPTZ NOT NULL
//	);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO auth_events (id, type, subject_id, email, jti, ip_address, message, created_at)
VALUES ($1, $2, NULLIF($3, 0), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		string(e.Type),
		e.SubjectID,
		e.Email,
		e.JTI,
		e.IPAddress,
		e.Message,
		e.CreatedAt,
	)
	return err
}
