package rbac

import (
	"net/http"

	"civicreport-platform/internal/auth"

	"github.com/gin-gonic/gin"
)

// RequireAnyRole allows access if the caller holds any of the given
// role tags ("any of", not "all of").
//
// Rules:
// - An empty requirement places no restriction and always allows.
// - A caller lacking every required role is denied with 403: the
//   identity is known but insufficient, distinct from 401.
// - A missing identity while roles are required is also 403; the
//   authentication guard earlier in the chain owns the 401 case.
func RequireAnyRole(required ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(required) == 0 {
			c.Next()
			return
		}

		id, ok := auth.IdentityFrom(c.Request.Context())
		if !ok || !id.HasAnyRole(required...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
