package http

import (
	"github.com/mrlokans/quna/internal/auth"
	"github.com/mrlokans/quna/internal/config"
	"github.com/mrlokans/quna/internal/feeds"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database Pinger
	Registry *feeds.Registry
	Quotes   QuoteStore

	// Curated imports (optional)
	ImportQueue     CuratedImportQueue
	TaskStatus      TaskStatusReader
	CuratedSeedPath string

	// Authentication (optional)
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	AuthController *auth.AuthController
	SessionManager *auth.SessionManager
	AuthConfig     config.Auth
	CSRFSecret     []byte

	// Idle-device eviction job, reported by /health (optional)
	Eviction EvictionStatus

	// Per-device API throttling
	RateLimit config.RateLimit

	// Application info
	Version string
}
