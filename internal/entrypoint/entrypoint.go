package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/quna/internal/auth"
	"github.com/mrlokans/quna/internal/config"
	"github.com/mrlokans/quna/internal/database"
	"github.com/mrlokans/quna/internal/database/quotes"
	"github.com/mrlokans/quna/internal/database/settings"
	"github.com/mrlokans/quna/internal/database/users"
	"github.com/mrlokans/quna/internal/feeds"
	http_controllers "github.com/mrlokans/quna/internal/http"
	"github.com/mrlokans/quna/internal/realtime"
	"github.com/mrlokans/quna/internal/remote"
	"github.com/mrlokans/quna/internal/scheduler"
	"github.com/mrlokans/quna/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	// kill (no param) default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Open event streams only end when their devices are closed, so release
	// background work before draining connections.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Quna v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Content store: repositories publish committed writes to the broker,
	// which feeds subscribe to for favourite changes.
	broker := realtime.NewBroker()
	quoteRepo := quotes.NewRepository(db.DB, broker)
	settingsRepo := settings.NewRepository(db.DB)
	registry := feeds.NewRegistry(remote.New(quoteRepo, broker), settingsRepo, cfg.Feeds.IdleTimeout)

	evictionScheduler := scheduler.NewFeedEvictionScheduler(registry, cfg.Feeds.EvictionSchedule)
	if err := evictionScheduler.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start feed eviction scheduler: %v", err)
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewImportCuratedQueue(quoteRepo, settingsRepo, database.CuratedSeed),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Initialize authentication if enabled
	var authService *auth.Service
	var authMiddleware *auth.Middleware
	var authController *auth.AuthController
	var sessionManager *auth.SessionManager
	var csrfSecret []byte

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		authService = auth.NewService(users.NewRepository(db.DB), cfg.Auth)

		// Get underlying SQL DB for session store
		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		authMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)
		authController = auth.NewAuthController(authService, sessionManager, cfg.Auth)

		// Generate or use configured CSRF secret
		secret := cfg.Auth.SessionSecret
		if secret == "" {
			secret, err = auth.GenerateSessionSecret()
			if err != nil {
				log.Fatalf("Failed to generate CSRF secret: %v", err)
			}
			log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
		}
		csrfSecret = auth.SecretKey(secret)

		hasUsers, err := authService.HasUsers(context.Background())
		if err != nil {
			log.Printf("Failed to count users: %v", err)
		} else if !hasUsers {
			log.Printf("No users found. The first account registered via /api/auth/register becomes the administrator.")
		}
	} else {
		log.Printf("Authentication mode: none (anonymous devices only)")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:        db,
		Registry:        registry,
		Quotes:          quoteRepo,
		CuratedSeedPath: cfg.Curated.SeedPath,
		Eviction:        evictionScheduler,
		AuthService:     authService,
		AuthMiddleware:  authMiddleware,
		AuthController:  authController,
		SessionManager:  sessionManager,
		AuthConfig:      cfg.Auth,
		CSRFSecret:      csrfSecret,
		RateLimit:       cfg.RateLimit,
		Version:         version,
	}
	if taskClient != nil {
		routerCfg.ImportQueue = taskClient
		routerCfg.TaskStatus = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		evictionScheduler.Stop()
		registry.Close()
		broker.Close()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
