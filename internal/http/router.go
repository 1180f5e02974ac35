package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/quna/internal/auth"
	"github.com/mrlokans/quna/internal/entities"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.AuthConfig.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.AuthConfig.SecureCookies, cfg.AuthService))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Registry, cfg.Version)
	if cfg.Eviction != nil {
		health.WithEviction(cfg.Eviction)
	}
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Account endpoints
	if cfg.AuthController != nil && cfg.AuthMiddleware != nil {
		cfg.AuthController.RegisterRoutes(router, cfg.AuthMiddleware)

		profileController := NewProfileController(cfg.AuthService)
		profile := router.Group("/api/profile", cfg.AuthMiddleware.RequireAuth())
		profile.GET("", profileController.Profile)
		profile.PUT("/password", profileController.ChangePassword)
	}

	api := router.Group("/api")
	api.Use(NewRateLimiter(cfg.RateLimit.ClientPerSecond, cfg.RateLimit.ClientBurst).ClientMiddleware())
	api.Use(DeviceMiddleware(cfg.Registry, cfg.AuthConfig.SecureCookies))
	api.Use(NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst).DeviceMiddleware())

	// Category feeds
	feedsController := NewFeedsController()
	api.GET("/categories", feedsController.ListCategories)
	api.GET("/feeds/:category", feedsController.GetFeed)
	api.POST("/feeds/:category/next", feedsController.Next)
	api.POST("/feeds/:category/previous", feedsController.Previous)
	api.POST("/feeds/:category/reload", feedsController.Reload)
	api.POST("/feeds/:category/favourite", feedsController.ToggleFavourite)

	// Device settings
	settingsController := NewSettingsController()
	api.GET("/settings/sources", settingsController.GetSources)
	api.PUT("/settings/sources", settingsController.SetSource)
	api.GET("/settings/language", settingsController.GetLanguage)
	api.PUT("/settings/language", settingsController.SetLanguage)

	// Contributions and favourites
	if cfg.Quotes != nil {
		quotesController := NewQuotesController(cfg.Quotes)
		api.POST("/quotes", quotesController.Create)
		api.GET("/quotes/mine", quotesController.ListMine)
		api.DELETE("/quotes/:id", quotesController.Delete)
		api.POST("/quotes/:id/favourite", quotesController.ToggleFavourite)

		favouritesController := NewFavouritesController(cfg.Quotes)
		api.GET("/favourites", favouritesController.List)
		api.GET("/favourites/stream", favouritesController.Stream)
	}

	// Administration
	if cfg.ImportQueue != nil && cfg.TaskStatus != nil {
		admin := api.Group("/admin")
		if cfg.AuthMiddleware != nil {
			admin.Use(cfg.AuthMiddleware.RequireRole(entities.UserRoleAdmin))
		}
		adminController := NewAdminController(cfg.ImportQueue, cfg.TaskStatus, cfg.CuratedSeedPath)
		admin.POST("/import", adminController.ImportCurated)
		admin.GET("/tasks/:id", adminController.GetTaskStatus)
	}

	return router
}
