package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/quna/internal/config"
	"github.com/mrlokans/quna/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupMiddleware(t *testing.T, authMode config.AuthMode) (*Middleware, *Service) {
	t.Helper()

	cfg := config.Auth{
		Mode:            authMode,
		SessionLifetime: 24 * time.Hour,
		BcryptCost:      4, // Low cost for faster tests
	}
	service, _ := setupService(t, cfg)
	return NewMiddleware(service, nil, cfg), service
}

func whoAmIRouter(m *Middleware) *gin.Engine {
	router := gin.New()
	router.Use(m.Handler())
	router.GET("/api/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":   GetUserID(c),
			"auth_type": GetAuthType(c),
		})
	})
	return router
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body %q: %v", rr.Body.String(), err)
	}
	return body
}

func TestMiddleware_NoAuthMode(t *testing.T) {
	middleware, _ := setupMiddleware(t, config.AuthModeNone)
	router := whoAmIRouter(middleware)

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["user_id"] != "" {
		t.Errorf("Expected anonymous user, got %q", body["user_id"])
	}
	if body["auth_type"] != string(AuthTypeNone) {
		t.Errorf("Expected auth_type none, got %q", body["auth_type"])
	}
}

func TestMiddleware_AnonymousRequestPassesThrough(t *testing.T) {
	middleware, _ := setupMiddleware(t, config.AuthModeLocal)
	router := whoAmIRouter(middleware)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/whoami", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 for anonymous request, got %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["user_id"] != "" {
		t.Errorf("Expected anonymous user, got %q", body["user_id"])
	}
}

func TestMiddleware_BearerAuth_ValidToken(t *testing.T) {
	middleware, service := setupMiddleware(t, config.AuthModeLocal)
	ctx := context.Background()

	user, err := service.CreateUser(ctx, "testuser", "test@example.com", "password12345", entities.UserRoleMember)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	token, err := service.GenerateToken(ctx, user.ID)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	router := whoAmIRouter(middleware)
	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	body := decodeBody(t, rr)
	if body["user_id"] != user.ID {
		t.Errorf("Expected user %s, got %q", user.ID, body["user_id"])
	}
	if body["auth_type"] != string(AuthTypeBearer) {
		t.Errorf("Expected auth_type bearer, got %q", body["auth_type"])
	}
}

func TestMiddleware_BearerAuth_InvalidOrMalformed(t *testing.T) {
	middleware, _ := setupMiddleware(t, config.AuthModeLocal)
	router := whoAmIRouter(middleware)

	for _, header := range []string{"Bearer invalid-token", "Basic dXNlcjpwYXNz", "Bearer", "token-only"} {
		t.Run(header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
			req.Header.Set("Authorization", header)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", rr.Code)
			}
			if body := decodeBody(t, rr); body["user_id"] != "" {
				t.Errorf("Expected anonymous user, got %q", body["user_id"])
			}
		})
	}
}

func TestMiddleware_RequireAuth(t *testing.T) {
	middleware, service := setupMiddleware(t, config.AuthModeLocal)
	ctx := context.Background()

	user, _ := service.CreateUser(ctx, "testuser", "test@example.com", "password12345", entities.UserRoleMember)
	token, _ := service.GenerateToken(ctx, user.ID)

	router := gin.New()
	router.Use(middleware.Handler())
	router.GET("/api/protected", middleware.RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/protected", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without credentials, got %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["code"] != CodeNotAuthenticated {
		t.Errorf("Expected code %q, got %q", CodeNotAuthenticated, body["code"])
	}

	req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200 with valid token, got %d", rr.Code)
	}
}

func TestMiddleware_RequireRole(t *testing.T) {
	middleware, service := setupMiddleware(t, config.AuthModeLocal)
	ctx := context.Background()

	admin, _ := service.CreateUser(ctx, "admin", "admin@example.com", "password12345", entities.UserRoleAdmin)
	member, _ := service.CreateUser(ctx, "member", "member@example.com", "password12345", entities.UserRoleMember)
	adminToken, _ := service.GenerateToken(ctx, admin.ID)
	memberToken, _ := service.GenerateToken(ctx, member.ID)

	router := gin.New()
	router.Use(middleware.Handler())
	router.POST("/api/admin", middleware.RequireRole(entities.UserRoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{name: "admin", token: adminToken, want: http.StatusOK},
		{name: "member", token: memberToken, want: http.StatusForbidden},
		{name: "anonymous", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, rr.Code)
			}
		})
	}
}

func TestMiddleware_RequireRole_NoAuthMode(t *testing.T) {
	middleware, _ := setupMiddleware(t, config.AuthModeNone)

	router := gin.New()
	router.Use(middleware.Handler())
	router.POST("/api/admin", middleware.RequireRole(entities.UserRoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/admin", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200 with accounts disabled, got %d", rr.Code)
	}
}

func TestContextHelpers_Anonymous(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if GetUserID(c) != "" {
		t.Error("Expected empty user id")
	}
	if GetUsername(c) != "" {
		t.Error("Expected empty username")
	}
	if GetUserRole(c) != "" {
		t.Error("Expected empty role")
	}
	if GetAuthType(c) != AuthTypeNone {
		t.Error("Expected auth type none")
	}
	if IsAuthenticated(c) {
		t.Error("Expected anonymous context")
	}

	c.Set(ContextKeyUserID, "u1")
	if !IsAuthenticated(c) {
		t.Error("Expected authenticated context")
	}
}
