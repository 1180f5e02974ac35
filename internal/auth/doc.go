// Package auth provides accounts, sessions and API tokens.
//
// Accounts are optional: every request is served for its device, and a
// signed-in user only adds identity for favourites and contributions.
//
// Two modes are supported:
//   - "none": accounts disabled, every request is anonymous
//   - "local": local user database with session cookies and Bearer tokens
//
// # Configuration
//
//	AUTH_MODE=local                        # Default
//	AUTH_SESSION_SECRET=<hex-32-bytes>     # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=720h             # Session duration
//	AUTH_TOKEN_EXPIRY=720h                 # API token expiry
//	AUTH_BCRYPT_COST=12                    # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true               # HTTPS-only cookies
//
// # Usage
//
//	authService := auth.NewService(users.NewRepository(db), cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService, sessionManager, cfg.Auth)
//	router.Use(authMiddleware.Handler())
//
// Extract user in handlers:
//
//	userID := auth.GetUserID(c) // "" for anonymous requests
package auth
