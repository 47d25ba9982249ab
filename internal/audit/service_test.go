package audit

import (
	"context"
	"testing"
)

func TestService_AppendRequiresType(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.Append(context.Background(), Event{SubjectID: 1}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestService_AppendFillsIDAndTimestamp(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogLogin(context.Background(), true, 7, "u@x.com", "1.2.3.4"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs := repo.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event")
	}
	e := evs[0]
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp to be filled")
	}
	if e.Type != EventTypeLoginSuccess || e.SubjectID != 7 || e.IPAddress != "1.2.3.4" {
		t.Fatalf("unexpected event: %+v", e)
	}
}

func TestService_LoginFailureAndLogoutTypes(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.LogLogin(ctx, false, 0, "nobody@x.com", ""); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := svc.LogLogout(ctx, 7, false, ""); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := svc.LogLogout(ctx, 7, true, ""); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs := repo.Events()
	if len(evs) != 3 {
		t.Fatalf("expected 3 events")
	}
	if evs[0].Type != EventTypeLoginFailure || evs[1].Type != EventTypeLogout || evs[2].Type != EventTypeRevokeAll {
		t.Fatalf("unexpected event types: %v %v %v", evs[0].Type, evs[1].Type, evs[2].Type)
	}
}

func TestService_NilServiceIsSafe(t *testing.T) {
	var svc *Service
	if err := svc.LogLogin(context.Background(), true, 1, "u@x.com", ""); err == nil {
		t.Fatalf("expected configuration error, not a panic")
	}
}
