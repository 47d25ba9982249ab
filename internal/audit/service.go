package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for auth events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records authentication lifecycle events.
//
// Callers should treat recording as best-effort: log the returned
// error, never fail the auth flow on it.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s == nil || s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LogLogin records a credential check outcome. subjectID is zero when
// the email did not resolve to an account.
func (s *Service) LogLogin(ctx context.Context, ok bool, subjectID int64, email, ip string) error {
	t := EventTypeLoginSuccess
	if !ok {
		t = EventTypeLoginFailure
	}
	return s.Append(ctx, Event{
		Type:      t,
		SubjectID: subjectID,
		Email:     email,
		IPAddress: ip,
	})
}

// LogRefresh records a successful rotation: oldJTI was retired, a new
// session took its place.
func (s *Service) LogRefresh(ctx context.Context, subjectID int64, oldJTI, ip string) error {
	return s.Append(ctx, Event{
		Type:      EventTypeTokenRefresh,
		SubjectID: subjectID,
		JTI:       oldJTI,
		IPAddress: ip,
	})
}

// LogLogout records a revocation; everywhere distinguishes single-session
// logout from "log out everywhere".
func (s *Service) LogLogout(ctx context.Context, subjectID int64, everywhere bool, ip string) error {
	t := EventTypeLogout
	if everywhere {
		t = EventTypeRevokeAll
	}
	return s.Append(ctx, Event{
		Type:      t,
		SubjectID: subjectID,
		IPAddress: ip,
	})
}
