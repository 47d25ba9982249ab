package auth

import (
	"errors"
	"time"

	"civicreport-platform/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// Codec signs and verifies compact tokens. It is purely computational:
// no store access, no side effects. Access and refresh tokens are signed
// with independent secrets so possession of one class cannot forge the
// other.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	audience      string
}

func NewCodec(cfg config.AuthConfig) (*Codec, error) {
	if cfg.AccessSecret == "" {
		return nil, errors.New("JWT_ACCESS_SECRET is required")
	}
	if cfg.RefreshSecret == "" {
		return nil, errors.New("JWT_REFRESH_SECRET is required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}

	return &Codec{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		issuer:        cfg.Issuer,
		audience:      cfg.Audience,
	}, nil
}

/* ===================== ISSUE ===================== */

// Issue signs a token of the given class carrying the identity and jti.
// iat/exp are embedded from now/ttl; the caller owns jti allocation.
func (c *Codec) Issue(now time.Time, tt TokenType, id Identity, jti string, ttl time.Duration) (string, error) {
	if jti == "" {
		return "", errors.New("jti is required")
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Audience:  audienceOrNil(c.audience),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
		Identity:  id,
		TokenType: tt,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secretFor(tt))
}

/* ===================== VERIFY ===================== */

// Verify parses and validates a token against the expected class.
// Fails closed: any structural, cryptographic, or semantic defect is a
// hard rejection.
func (c *Codec) Verify(tokenString string, expected TokenType, now time.Time) (Claims, error) {
	var claims Claims

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)

	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return c.secretFor(expected), nil
	})
	if err != nil {
		return Claims{}, err
	}

	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(30 * time.Second), // clock skew tolerance
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}
	if c.audience != "" {
		opts = append(opts, jwt.WithAudience(c.audience))
	}

	validator := jwt.NewValidator(opts...)
	if err := validator.Validate(claims.RegisteredClaims); err != nil {
		return Claims{}, err
	}

	// Custom claims validation
	if claims.TokenType != expected {
		return Claims{}, errors.New("token_type mismatch")
	}
	if claims.UserID <= 0 {
		return Claims{}, errors.New("user_id missing")
	}
	if claims.Email == "" {
		return Claims{}, errors.New("email missing")
	}
	if claims.ID == "" {
		return Claims{}, errors.New("jti missing")
	}
	// Roles are required on access tokens; they drive the role guard.
	if expected == TokenTypeAccess && len(claims.Roles) == 0 {
		return Claims{}, errors.New("roles missing in access token")
	}

	return claims, nil
}

func (c *Codec) secretFor(tt TokenType) []byte {
	if tt == TokenTypeRefresh {
		return c.refreshSecret
	}
	return c.accessSecret
}

func audienceOrNil(aud string) jwt.ClaimStrings {
	if aud == "" {
		return nil
	}
	return jwt.ClaimStrings{aud}
}
