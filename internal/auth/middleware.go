package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

// BearerToken extracts the raw bearer token from the Authorization
// header. Returns false when the header is absent or not a bearer
// scheme.
func BearerToken(c *gin.Context) (string, bool) {
	raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
	if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(raw, bearerPrefix))
	if tok == "" {
		return "", false
	}
	return tok, true
}

// RequireAccessToken verifies an access token and injects the identity
// into the request context. Verification is stateless (codec-only); it
// never touches the refresh-token path or the session store. RBAC
// checks belong to internal/rbac.
func RequireAccessToken(codec *Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := codec.Verify(tok, TokenTypeAccess, time.Now())
		if err != nil {
			// Single outward signal for every failed sub-check.
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		attachIdentity(c, claims.Identity)
		c.Next()
	}
}

// OptionalAccessToken is the public-route variant: requests without a
// bearer token pass through with no identity attached. A token that is
// present but invalid is still rejected; fail closed, never half-open.
func OptionalAccessToken(codec *Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := BearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := codec.Verify(tok, TokenTypeAccess, time.Now())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		attachIdentity(c, claims.Identity)
		c.Next()
	}
}

func attachIdentity(c *gin.Context, id Identity) {
	ctx := WithIdentity(c.Request.Context(), id)
	c.Request = c.Request.WithContext(ctx)

	// Also store on gin context for handler convenience.
	c.Set("user_id", id.UserID)
	c.Set("roles", id.Roles)
}
