package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/quna/internal/config"
)

const testSessionUserID = "3f1c9a52-6a8e-4c1a-9f55-0c2b7e0d1a11"

func setupSessionManager(t *testing.T) *SessionManager {
	t.Helper()

	sqlDB, err := setupTestDB(t).DB()
	require.NoError(t, err)

	sm, err := NewSessionManager(sqlDB, config.Auth{
		Mode:            config.AuthModeLocal,
		SessionLifetime: 24 * time.Hour,
	})
	require.NoError(t, err)
	return sm
}

func TestNewSessionManager(t *testing.T) {
	sm := setupSessionManager(t)

	assert.Equal(t, SessionCookieName, sm.Cookie.Name)
	assert.True(t, sm.Cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, sm.Cookie.SameSite)
	assert.Equal(t, 12*time.Hour, sm.IdleTimeout)
}

func TestSessionManager_SignIn(t *testing.T) {
	sm := setupSessionManager(t)

	rr := httptest.NewRecorder()
	sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		assert.Empty(t, sm.UserID(ctx))
		assert.Nil(t, sm.Info(ctx))

		require.NoError(t, sm.SignIn(ctx, testSessionUserID))

		assert.Equal(t, testSessionUserID, sm.UserID(ctx))
		info := sm.Info(ctx)
		require.NotNil(t, info)
		assert.Equal(t, testSessionUserID, info.UserID)
		assert.False(t, info.SignedInAt.IsZero())
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Result().Cookies())
}

func TestSessionManager_SessionSurvivesRequests(t *testing.T) {
	sm := setupSessionManager(t)

	rr := httptest.NewRecorder()
	sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, sm.SignIn(r.Context(), testSessionUserID))
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", nil))

	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)

	var seen string
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = sm.UserID(r.Context())
	})).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, testSessionUserID, seen)
}

func TestSessionManager_SignOut(t *testing.T) {
	sm := setupSessionManager(t)

	sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		require.NoError(t, sm.SignIn(ctx, testSessionUserID))
		require.NoError(t, sm.SignOut(ctx))

		assert.Empty(t, sm.UserID(ctx))
		assert.Nil(t, sm.Info(ctx))
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
