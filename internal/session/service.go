package session

import (
	"context"
	"fmt"
	"time"

	"civicreport-platform/internal/auth"
	"civicreport-platform/internal/config"
	"civicreport-platform/pkg/logger"

	"github.com/google/uuid"
)

// TokenPair is the issuance result handed to clients. Ephemeral; only
// the refresh token's existence is tracked in the store.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	TokenType    string `json:"tokenType"`
}

const schemeBearer = "Bearer"

// Service is the sole reader/writer of session and blacklist state.
//
// Per-jti lifecycle: ACTIVE (session record present, not blacklisted),
// then ROTATED or REVOKED (blacklisted; indistinguishable to a
// verifier), or EXPIRED (store TTL elapsed). ROTATED and REVOKED are
// terminal.
type Service struct {
	codec *auth.Codec
	store Store

	accessTTL  time.Duration
	refreshTTL time.Duration

	clock func() time.Time
}

func NewService(codec *auth.Codec, store Store, cfg config.AuthConfig) *Service {
	return &Service{
		codec:      codec,
		store:      store,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		clock:      time.Now,
	}
}

// GenerateTokens mints a fresh jti, signs an access/refresh pair
// embedding it, and records the session in the store. A store failure
// fails the whole call: no token is ever handed out that the store does
// not know about. Safe to call concurrently for the same subject; each
// call gets its own jti.
func (s *Service) GenerateTokens(ctx context.Context, id auth.Identity) (TokenPair, error) {
	jti := uuid.NewString()
	now := s.clock()

	access, err := s.codec.Issue(now, auth.TokenTypeAccess, id, jti, s.accessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.codec.Issue(now, auth.TokenTypeRefresh, id, jti, s.refreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.store.Set(ctx, refreshTokenKey(id.UserID, jti), refresh, s.refreshTTL); err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := s.store.SAdd(ctx, userTokensKey(id.UserID), jti); err != nil {
		// Roll back the orphan record so the active set stays authoritative.
		_ = s.store.Del(ctx, refreshTokenKey(id.UserID, jti))
		return TokenPair{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
		TokenType:    schemeBearer,
	}, nil
}

// VerifyAccessToken is a pure cryptographic check; it does not consult
// the store. Access tokens are stateless for low-latency request-path
// checks, so revocation takes effect only once they naturally expire
// (bounded by the access TTL).
func (s *Service) VerifyAccessToken(token string) (auth.Claims, error) {
	claims, err := s.codec.Verify(token, auth.TokenTypeAccess, s.clock())
	if err != nil {
		return auth.Claims{}, ErrUnauthorized
	}
	return claims, nil
}

// VerifyRefreshToken accepts a refresh token only if it verifies under
// the refresh secret, its jti is not blacklisted, and the session
// record exists with a value equal to the presented string. The value
// equality defends against a stolen-but-superseded token being replayed
// after rotation moved the session forward. Store failures fail closed.
func (s *Service) VerifyRefreshToken(ctx context.Context, token string) (auth.Claims, error) {
	claims, err := s.codec.Verify(token, auth.TokenTypeRefresh, s.clock())
	if err != nil {
		return auth.Claims{}, ErrUnauthorized
	}

	blacklisted, err := s.store.Exists(ctx, blacklistKey(claims.ID))
	if err != nil || blacklisted {
		return auth.Claims{}, ErrUnauthorized
	}

	stored, ok, err := s.store.Get(ctx, refreshTokenKey(claims.UserID, claims.ID))
	if err != nil || !ok || stored != token {
		return auth.Claims{}, ErrUnauthorized
	}

	return claims, nil
}

// RefreshTokens rotates a refresh token: verify, blacklist the old jti,
// clear its session record, and issue a new pair carrying forward only
// the identity fields. The retired claims are returned alongside the
// pair so callers can attribute the rotation.
//
// Write ordering is the correctness mechanism. Blacklist first: a crash
// mid-rotation leaves the old token unusable rather than double-usable.
// The session record is then removed with a compare-and-delete, so of N
// concurrent rotations of the same token exactly one proceeds to
// issuance; the rest see Unauthorized.
func (s *Service) RefreshTokens(ctx context.Context, oldToken string) (TokenPair, auth.Claims, error) {
	claims, err := s.VerifyRefreshToken(ctx, oldToken)
	if err != nil {
		return TokenPair{}, auth.Claims{}, err
	}

	if err := s.store.Set(ctx, blacklistKey(claims.ID), blacklistSentinel, s.refreshTTL); err != nil {
		return TokenPair{}, auth.Claims{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	won, err := s.store.CompareAndDelete(ctx, refreshTokenKey(claims.UserID, claims.ID), oldToken)
	if err != nil {
		return TokenPair{}, auth.Claims{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !won {
		// A concurrent rotation already consumed this token.
		return TokenPair{}, auth.Claims{}, ErrUnauthorized
	}

	if err := s.store.SRem(ctx, userTokensKey(claims.UserID), claims.ID); err != nil {
		return TokenPair{}, auth.Claims{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	pair, err := s.GenerateTokens(ctx, claims.Identity)
	if err != nil {
		return TokenPair{}, auth.Claims{}, err
	}
	return pair, claims, nil
}

// InvalidateTokens revokes every active session for the subject
// ("log out everywhere"). Subject-scoped: sessions of other subjects
// are untouched.
func (s *Service) InvalidateTokens(ctx context.Context, subjectID int64) error {
	jtis, err := s.store.SMembers(ctx, userTokensKey(subjectID))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	for _, jti := range jtis {
		if err := s.store.Set(ctx, blacklistKey(jti), blacklistSentinel, s.refreshTTL); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if err := s.store.Del(ctx, refreshTokenKey(subjectID, jti)); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	if err := s.store.Del(ctx, userTokensKey(subjectID)); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// BlacklistToken revokes a single session. Idempotent: blacklisting an
// already-blacklisted or nonexistent jti is a no-op success.
func (s *Service) BlacklistToken(ctx context.Context, subjectID int64, jti string) error {
	if err := s.store.Set(ctx, blacklistKey(jti), blacklistSentinel, s.refreshTTL); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := s.store.Del(ctx, refreshTokenKey(subjectID, jti)); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := s.store.SRem(ctx, userTokensKey(subjectID), jti); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// RevokeTokensForUser is the best-effort revoke used on logout paths.
// With an access token it kills only that token's session; without one
// it invalidates every session for the subject. It reports success as a
// boolean and never propagates an error: callers are usually already in
// a cleanup path.
func (s *Service) RevokeTokensForUser(ctx context.Context, subjectID int64, accessToken string) bool {
	if accessToken != "" {
		claims, err := s.codec.Verify(accessToken, auth.TokenTypeAccess, s.clock())
		if err != nil || claims.UserID != subjectID {
			return false
		}
		if err := s.BlacklistToken(ctx, subjectID, claims.ID); err != nil {
			logger.From(ctx).Warn("best-effort revoke failed", "subject_id", subjectID, "err", err)
			return false
		}
		return true
	}

	if err := s.InvalidateTokens(ctx, subjectID); err != nil {
		logger.From(ctx).Warn("best-effort revoke-all failed", "subject_id", subjectID, "err", err)
		return false
	}
	return true
}
