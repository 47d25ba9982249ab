package httpapi

import (
	"errors"
	"net/http"

	"civicreport-platform/internal/audit"
	"civicreport-platform/internal/auth"
	"civicreport-platform/internal/identity"
	"civicreport-platform/internal/session"
	"civicreport-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Verifier *identity.Verifier
	Tokens   *session.Service
	Audit    *audit.Service
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type logoutRequest struct {
	Everywhere bool `json:"everywhere"`
}

// Login validates credentials and issues a token pair.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "email, password required"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.Verifier.ValidateCredentials(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			h.record(c, h.Audit.LogLogin(ctx, false, 0, req.Email, c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	pair, err := h.Tokens.GenerateTokens(ctx, user.Identity())
	if err != nil {
		h.abortIssuance(c, err)
		return
	}

	h.record(c, h.Audit.LogLogin(ctx, true, user.ID, user.Email, c.ClientIP()))
	c.JSON(http.StatusCreated, pair)
}

// Refresh rotates a refresh token for a new pair. All three failure
// modes (bad signature, blacklisted jti, missing/mismatched session
// record) collapse to the same 401.
func (h Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.RefreshToken == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "refreshToken required"})
		return
	}

	ctx := c.Request.Context()
	pair, old, err := h.Tokens.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrUnauthorized) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		h.abortIssuance(c, err)
		return
	}

	h.record(c, h.Audit.LogRefresh(ctx, old.UserID, old.ID, c.ClientIP()))
	c.JSON(http.StatusCreated, pair)
}

// Logout revokes the presenting token's session, or every session for
// the subject when the body carries {"everywhere": true}. Best-effort:
// the outcome is a boolean, never an error status.
func (h Handlers) Logout(c *gin.Context) {
	id, ok := auth.IdentityFrom(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	// Body is optional; absent or malformed means single-session logout.
	var req logoutRequest
	_ = c.ShouldBindJSON(&req)

	ctx := c.Request.Context()
	var success bool
	if req.Everywhere {
		success = h.Tokens.RevokeTokensForUser(ctx, id.UserID, "")
	} else {
		tok, _ := auth.BearerToken(c)
		success = h.Tokens.RevokeTokensForUser(ctx, id.UserID, tok)
	}

	h.record(c, h.Audit.LogLogout(ctx, id.UserID, req.Everywhere, c.ClientIP()))
	c.JSON(http.StatusOK, gin.H{"success": success})
}

// Me returns the authenticated identity.
func (h Handlers) Me(c *gin.Context) {
	id, ok := auth.IdentityFrom(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	c.JSON(http.StatusOK, id)
}

func (h Handlers) abortIssuance(c *gin.Context, err error) {
	if errors.Is(err, session.ErrStoreUnavailable) {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
}

// record logs a failed audit append; auditing never blocks the flow.
func (h Handlers) record(c *gin.Context, err error) {
	if err != nil {
		logger.FromGin(c).Warn("audit append failed", "err", err)
	}
}
