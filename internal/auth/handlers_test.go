package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/quna/internal/config"
	"github.com/mrlokans/quna/internal/database/users"
)

type authFixture struct {
	router  *gin.Engine
	service *Service
}

func setupAuthRouter(t *testing.T) *authFixture {
	t.Helper()

	cfg := config.Auth{
		Mode:             config.AuthModeLocal,
		SessionLifetime:  24 * time.Hour,
		BcryptCost:       4,
		MaxLoginAttempts: 3,
	}
	db := setupTestDB(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get SQL DB: %v", err)
	}
	sm, err := NewSessionManager(sqlDB, cfg)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}

	service := NewService(users.NewRepository(db), cfg)
	mw := NewMiddleware(service, sm, cfg)
	controller := NewAuthController(service, sm, cfg)

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.Use(mw.Handler())
	controller.RegisterRoutes(router, mw)

	return &authFixture{router: router, service: service}
}

func (f *authFixture) do(t *testing.T, method, path string, body any, cookies []*http.Cookie, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestAuthController_RegisterLoginMeLogout(t *testing.T) {
	f := setupAuthRouter(t)

	rr := f.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "reader",
		"email":    "reader@example.com",
		"password": "password12345",
	}, nil, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var registered UserResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &registered); err != nil {
		t.Fatalf("register: bad body: %v", err)
	}
	if registered.Role != "admin" {
		t.Errorf("register: first account role = %q, want admin", registered.Role)
	}

	rr = f.do(t, http.MethodGet, "/api/auth/me", nil, nil, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("me without session: expected 401, got %d", rr.Code)
	}

	rr = f.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"login":    "reader",
		"password": "password12345",
	}, nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login: expected session cookie")
	}

	rr = f.do(t, http.MethodGet, "/api/auth/me", nil, cookies, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rr.Code)
	}
	var me UserResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &me); err != nil {
		t.Fatalf("me: bad body: %v", err)
	}
	if me.ID != registered.ID {
		t.Errorf("me: id = %s, want %s", me.ID, registered.ID)
	}

	rr = f.do(t, http.MethodPost, "/api/auth/logout", nil, cookies, nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("logout: expected 204, got %d", rr.Code)
	}

	rr = f.do(t, http.MethodGet, "/api/auth/me", nil, cookies, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("me after logout: expected 401, got %d", rr.Code)
	}
}

func TestAuthController_RegisterValidation(t *testing.T) {
	f := setupAuthRouter(t)

	rr := f.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "x",
		"email":    "reader@example.com",
		"password": "password12345",
	}, nil, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid username, got %d", rr.Code)
	}

	body := map[string]string{"username": "reader", "email": "reader@example.com", "password": "password12345"}
	if rr := f.do(t, http.MethodPost, "/api/auth/register", body, nil, nil); rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if rr := f.do(t, http.MethodPost, "/api/auth/register", body, nil, nil); rr.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate, got %d", rr.Code)
	}
}

func TestAuthController_LoginRateLimited(t *testing.T) {
	f := setupAuthRouter(t)
	bad := map[string]string{"login": "reader", "password": "wrongpassword"}

	for i := 0; i < 3; i++ {
		if rr := f.do(t, http.MethodPost, "/api/auth/login", bad, nil, nil); rr.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, rr.Code)
		}
	}

	rr := f.do(t, http.MethodPost, "/api/auth/login", bad, nil, nil)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after repeated failures, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestAuthController_TokenFlow(t *testing.T) {
	f := setupAuthRouter(t)

	f.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "reader",
		"email":    "reader@example.com",
		"password": "password12345",
	}, nil, nil)
	login := f.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"login":    "reader",
		"password": "password12345",
	}, nil, nil)
	cookies := login.Result().Cookies()

	if rr := f.do(t, http.MethodPost, "/api/auth/token", nil, nil, nil); rr.Code != http.StatusUnauthorized {
		t.Errorf("anonymous token request: expected 401, got %d", rr.Code)
	}

	rr := f.do(t, http.MethodPost, "/api/auth/token", nil, cookies, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("token: expected 200, got %d", rr.Code)
	}
	var tokenBody map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &tokenBody); err != nil {
		t.Fatalf("token: bad body: %v", err)
	}
	bearer := map[string]string{"Authorization": "Bearer " + tokenBody["token"]}

	if rr := f.do(t, http.MethodGet, "/api/auth/me", nil, nil, bearer); rr.Code != http.StatusOK {
		t.Errorf("me with bearer: expected 200, got %d", rr.Code)
	}

	if rr := f.do(t, http.MethodDelete, "/api/auth/token", nil, nil, bearer); rr.Code != http.StatusOK {
		t.Fatalf("revoke: expected 200, got %d", rr.Code)
	}
	if rr := f.do(t, http.MethodGet, "/api/auth/me", nil, nil, bearer); rr.Code != http.StatusUnauthorized {
		t.Errorf("me with revoked bearer: expected 401, got %d", rr.Code)
	}
}
