package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"civicreport-platform/internal/audit"
	"civicreport-platform/internal/auth"
	"civicreport-platform/internal/config"
	"civicreport-platform/internal/identity"
	"civicreport-platform/internal/rbac"
	"civicreport-platform/internal/session"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type testAPI struct {
	router *gin.Engine
	audit  *audit.MemoryRepo
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.AuthConfig{
		AccessSecret:    "access-secret",
		RefreshSecret:   "refresh-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
	codec, err := auth.NewCodec(cfg)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}

	users := identity.NewMemoryRepo()
	seed := func(id int64, email string, roles []string) {
		h, err := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		users.Put(identity.User{ID: id, Email: email, PasswordHash: string(h), Roles: roles, Active: true})
	}
	seed(1, "u@x.com", []string{rbac.RoleCitizen})
	seed(2, "staff@x.com", []string{rbac.RoleTeamMember})
	seed(3, "admin@x.com", []string{rbac.RoleSystemAdmin})

	auditRepo := audit.NewMemoryRepo()
	h := Handlers{
		Verifier: identity.NewVerifier(users),
		Tokens:   session.NewService(codec, session.NewMemoryStore(), cfg),
		Audit:    audit.NewService(auditRepo),
	}

	r := gin.New()
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", auth.RequireAccessToken(codec), h.Logout)
	}
	v1 := r.Group("/v1")
	v1.Use(auth.RequireAccessToken(codec))
	{
		v1.GET("/me", h.Me)
		admin := v1.Group("/admin")
		admin.Use(rbac.RequireAnyRole(rbac.RoleSystemAdmin))
		admin.GET("/ping", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	}

	return &testAPI{router: r, audit: auditRepo}
}

func (a *testAPI) post(t *testing.T, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) get(t *testing.T, path, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) login(t *testing.T, email string) session.TokenPair {
	t.Helper()
	w := a.post(t, "/auth/login", gin.H{"email": email, "password": "correct"}, "")
	if w.Code != 201 {
		t.Fatalf("login: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var pair session.TokenPair
	if err := json.Unmarshal(w.Body.Bytes(), &pair); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return pair
}

func TestLogin_IssuesTokenPair(t *testing.T) {
	api := newTestAPI(t)

	pair := api.login(t, "u@x.com")
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected non-empty tokens")
	}
	if pair.ExpiresIn != 900 {
		t.Fatalf("expected expiresIn 900, got %d", pair.ExpiresIn)
	}
	if pair.TokenType != "Bearer" {
		t.Fatalf("expected Bearer, got %q", pair.TokenType)
	}

	evs := api.audit.Events()
	if len(evs) != 1 || evs[0].Type != audit.EventTypeLoginSuccess {
		t.Fatalf("expected a login_success audit event, got %+v", evs)
	}
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	api := newTestAPI(t)

	w := api.post(t, "/auth/login", gin.H{"email": "u@x.com", "password": "wrong"}, "")
	if w.Code != 401 {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	evs := api.audit.Events()
	if len(evs) != 1 || evs[0].Type != audit.EventTypeLoginFailure {
		t.Fatalf("expected a login_failure audit event")
	}
}

func TestLogin_RejectsMalformedBody(t *testing.T) {
	api := newTestAPI(t)

	w := api.post(t, "/auth/login", gin.H{"email": "u@x.com"}, "")
	if w.Code != 400 {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRefresh_RotatesAndRejectsReuse(t *testing.T) {
	api := newTestAPI(t)
	pair := api.login(t, "u@x.com")

	w := api.post(t, "/auth/refresh", gin.H{"refreshToken": pair.RefreshToken}, "")
	if w.Code != 201 {
		t.Fatalf("refresh: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var next session.TokenPair
	if err := json.Unmarshal(w.Body.Bytes(), &next); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatalf("expected a rotated refresh token")
	}

	// A token already used once for rotation is dead.
	w = api.post(t, "/auth/refresh", gin.H{"refreshToken": pair.RefreshToken}, "")
	if w.Code != 401 {
		t.Fatalf("reuse: expected 401, got %d", w.Code)
	}
}

func TestLogout_RevokesSession(t *testing.T) {
	api := newTestAPI(t)
	pair := api.login(t, "u@x.com")

	w := api.post(t, "/auth/logout", nil, pair.AccessToken)
	if w.Code != 200 {
		t.Fatalf("logout: expected 200, got %d", w.Code)
	}
	var resp struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || !resp.Success {
		t.Fatalf("expected success true: %s", w.Body.String())
	}

	// The refresh token issued alongside shares the jti; it must be dead.
	w = api.post(t, "/auth/refresh", gin.H{"refreshToken": pair.RefreshToken}, "")
	if w.Code != 401 {
		t.Fatalf("expected 401 after logout, got %d", w.Code)
	}
}

func TestLogout_Everywhere(t *testing.T) {
	api := newTestAPI(t)
	p1 := api.login(t, "u@x.com")
	p2 := api.login(t, "u@x.com")

	w := api.post(t, "/auth/logout", gin.H{"everywhere": true}, p1.AccessToken)
	if w.Code != 200 {
		t.Fatalf("logout: expected 200, got %d", w.Code)
	}

	for _, pair := range []session.TokenPair{p1, p2} {
		w := api.post(t, "/auth/refresh", gin.H{"refreshToken": pair.RefreshToken}, "")
		if w.Code != 401 {
			t.Fatalf("expected every session revoked, got %d", w.Code)
		}
	}
}

func TestProtectedRoute_RequiresToken(t *testing.T) {
	api := newTestAPI(t)

	if w := api.get(t, "/v1/me", ""); w.Code != 401 {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	pair := api.login(t, "u@x.com")
	w := api.get(t, "/v1/me", pair.AccessToken)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var id auth.Identity
	if err := json.Unmarshal(w.Body.Bytes(), &id); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if id.UserID != 1 || id.Email != "u@x.com" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestRoleGuard_AdminOnly(t *testing.T) {
	api := newTestAPI(t)

	staff := api.login(t, "staff@x.com")
	if w := api.get(t, "/v1/admin/ping", staff.AccessToken); w.Code != 403 {
		t.Fatalf("expected 403 for TEAM_MEMBER, got %d", w.Code)
	}

	admin := api.login(t, "admin@x.com")
	if w := api.get(t, "/v1/admin/ping", admin.AccessToken); w.Code != 200 {
		t.Fatalf("expected 200 for SYSTEM_ADMIN, got %d", w.Code)
	}
}
