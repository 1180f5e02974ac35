package auth

import (
	"context"
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/mrlokans/quna/internal/config"
)

// SessionCookieName is the name of the session cookie.
const SessionCookieName = "session"

// Only the user id is kept in the session. Username and role are reloaded
// from the users table on every request so role changes apply immediately.
const (
	sessionKeyUserID     = "user_id"
	sessionKeySignedInAt = "signed_in_at"
)

const sessionsSchema = `CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	expiry REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`

func init() {
	gob.Register(time.Time{})
}

// SessionManager wraps scs.SessionManager with sign-in bookkeeping.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a session manager persisting to the sessions
// table of sqlDB, the *sql.DB underlying GORM.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	if _, err := sqlDB.Exec(sessionsSchema); err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)
	sm.Lifetime = cfg.SessionLifetime
	sm.IdleTimeout = cfg.SessionLifetime / 2

	sm.Cookie.Name = SessionCookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteStrictMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// SignIn binds the session to userID. The token is renewed first to prevent
// session fixation.
func (sm *SessionManager) SignIn(ctx context.Context, userID string) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, sessionKeyUserID, userID)
	sm.Put(ctx, sessionKeySignedInAt, time.Now().UTC())
	return nil
}

// SignOut destroys the session.
func (sm *SessionManager) SignOut(ctx context.Context) error {
	return sm.Destroy(ctx)
}

// UserID returns the signed-in user id, or "" for anonymous sessions.
func (sm *SessionManager) UserID(ctx context.Context) string {
	return sm.GetString(ctx, sessionKeyUserID)
}

// SessionInfo describes a signed-in session.
type SessionInfo struct {
	UserID     string
	SignedInAt time.Time
}

// Info returns the session's sign-in details, or nil when anonymous.
func (sm *SessionManager) Info(ctx context.Context) *SessionInfo {
	userID := sm.UserID(ctx)
	if userID == "" {
		return nil
	}
	at, _ := sm.Get(ctx, sessionKeySignedInAt).(time.Time)
	return &SessionInfo{UserID: userID, SignedInAt: at}
}
