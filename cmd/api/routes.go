package main

import (
	"civicreport-platform/internal/auth"
	"civicreport-platform/internal/httpapi"
	"civicreport-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, codec *auth.Codec, h httpapi.Handlers) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// AUTH routes. Login and refresh are public by definition; logout
	// authenticates with the access token it revokes.
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", auth.RequireAccessToken(codec), h.Logout)
	}

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(auth.RequireAccessToken(codec))
	{
		v1.GET("/me", h.Me)

		// Staff-only surface (report triage etc. live behind this gate).
		staff := v1.Group("/staff")
		staff.Use(rbac.RequireAnyRole(rbac.RoleTeamMember, rbac.RoleDepartmentHead, rbac.RoleSystemAdmin))
		{
			staff.GET("/ping", func(c *gin.Context) {
				c.JSON(200, gin.H{"status": "ok"})
			})
		}

		// ADMIN routes
		admin := v1.Group("/admin")
		admin.Use(rbac.RequireAnyRole(rbac.RoleSystemAdmin))
		{
			admin.GET("/ping", func(c *gin.Context) {
				c.JSON(200, gin.H{"status": "ok"})
			})
		}
	}
}
