package audit

import "time"

// Event is an immutable, append-only record of an authentication
// lifecycle action.
//
// Invariants:
// - Events are never updated or deleted.
// - Recording is best-effort; auth flows must not block on audit failures.
//
// Storage recommendation (Postgres):
// - Table auth_events with an INSERT-only policy.
// - Optional: partition by time for retention.
type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the lifecycle action being recorded.
	Type EventType `json:"type" db:"type"`

	// SubjectID is the account the event concerns; zero for failed
	// logins against unknown emails.
	SubjectID int64  `json:"subject_id,omitempty" db:"subject_id"`
	Email     string `json:"email,omitempty" db:"email"`

	// JTI identifies the affected session, when one exists.
	JTI string `json:"jti,omitempty" db:"jti"`

	// IPAddress should capture the original client IP when available.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeLoginSuccess EventType = "login_success"
	EventTypeLoginFailure EventType = "login_failure"
	EventTypeTokenRefresh EventType = "token_refresh"
	EventTypeLogout       EventType = "logout"
	EventTypeRevokeAll    EventType = "revoke_all"
)
