package session

import (
	"context"
	"fmt"
	"time"
)

// Store is the key-value contract backing refresh-token sessions and
// the revocation blacklist. Implementations must apply per-key expiry;
// no multi-key transactions are assumed, so the service relies on write
// ordering plus CompareAndDelete for correctness.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns (value, true, nil) when the key exists and has not
	// expired, ("", false, nil) when absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	SAdd(ctx context.Context, set, member string) error
	SMembers(ctx context.Context, set string) ([]string, error)
	SRem(ctx context.Context, set, member string) error

	// CompareAndDelete atomically deletes key iff its current value
	// equals expected, reporting whether the delete happened. This is
	// the single-winner primitive for concurrent rotations of the same
	// refresh token.
	CompareAndDelete(ctx context.Context, key, expected string) (bool, error)
}

// Persisted key layout:
//   refresh_token:{subjectId}:{jti} -> raw refresh token (TTL = refresh lifetime)
//   user_tokens:{subjectId}         -> set of active jti
//   blacklist:{jti}                 -> "1" (TTL = refresh lifetime)

func refreshTokenKey(subjectID int64, jti string) string {
	return fmt.Sprintf("refresh_token:%d:%s", subjectID, jti)
}

func userTokensKey(subjectID int64) string {
	return fmt.Sprintf("user_tokens:%d", subjectID)
}

func blacklistKey(jti string) string {
	return fmt.Sprintf("blacklist:%s", jti)
}

const blacklistSentinel = "1"
