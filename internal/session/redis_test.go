package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewRedisStore(rdb), mr
}

func TestRedisStore_SetGetExpiry(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || v != "v" {
		t.Fatalf("get: %q %v %v", v, ok, err)
	}

	ok, err = s.Exists(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("exists: %v %v", ok, err)
	}

	mr.FastForward(2 * time.Minute)

	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("expected key expired")
	}
	if ok, _ := s.Exists(ctx, "k"); ok {
		t.Fatalf("expected key expired")
	}
}

func TestRedisStore_GetMissingIsNotAnError(t *testing.T) {
	s, _ := newRedisStore(t)

	v, ok, err := s.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || v != "" {
		t.Fatalf("expected absent key")
	}
}

func TestRedisStore_CompareAndDelete(t *testing.T) {
	s, _ := newRedisStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	won, err := s.CompareAndDelete(ctx, "k", "other")
	if err != nil {
		t.Fatalf("cad: %v", err)
	}
	if won {
		t.Fatalf("mismatched value must not delete")
	}
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Fatalf("key must survive a mismatched delete")
	}

	won, err = s.CompareAndDelete(ctx, "k", "v")
	if err != nil {
		t.Fatalf("cad: %v", err)
	}
	if !won {
		t.Fatalf("matching value must delete")
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("key must be gone")
	}

	// Second delete of the same key loses.
	won, err = s.CompareAndDelete(ctx, "k", "v")
	if err != nil || won {
		t.Fatalf("expected loss on consumed key: %v %v", won, err)
	}
}

func TestRedisStore_Sets(t *testing.T) {
	s, _ := newRedisStore(t)
	ctx := context.Background()

	for _, m := range []string{"a", "b", "c"} {
		if err := s.SAdd(ctx, "set", m); err != nil {
			t.Fatalf("sadd: %v", err)
		}
	}

	members, err := s.SMembers(ctx, "set")
	if err != nil || len(members) != 3 {
		t.Fatalf("smembers: %v %v", members, err)
	}

	if err := s.SRem(ctx, "set", "b"); err != nil {
		t.Fatalf("srem: %v", err)
	}
	members, _ = s.SMembers(ctx, "set")
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %v", members)
	}

	if err := s.Del(ctx, "set"); err != nil {
		t.Fatalf("del: %v", err)
	}
	members, _ = s.SMembers(ctx, "set")
	if len(members) != 0 {
		t.Fatalf("expected empty set, got %v", members)
	}
}

// End-to-end lifecycle against the redis-backed store.
func TestServiceOverRedis_RotationAndRevocation(t *testing.T) {
	store, _ := newRedisStore(t)
	s := newTestService(t, store)
	ctx := context.Background()

	old, err := s.GenerateTokens(ctx, testIdentity(42))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	next, _, err := s.RefreshTokens(ctx, old.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := s.VerifyRefreshToken(ctx, old.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected rotated token rejected, got %v", err)
	}

	if err := s.InvalidateTokens(ctx, 42); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := s.VerifyRefreshToken(ctx, next.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected revoked token rejected, got %v", err)
	}
}
