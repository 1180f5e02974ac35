package config

import (
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // Anonymous devices only, no user accounts
	AuthModeLocal AuthMode = "local" // Local user database with sessions and tokens
)

type (
	Config struct {
		HTTP
		Global
		Database
		Tasks
		Auth
		Feeds
		Curated
		RateLimit
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
		Version                  string
	}
	Database struct {
		Path string
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration // Stuck tasks are released back to the queue after this
		CleanupInterval time.Duration
	}
	Auth struct {
		Mode            AuthMode
		SessionSecret   string
		SessionLifetime time.Duration
		TokenExpiry     time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Feeds struct {
		IdleTimeout      time.Duration // Devices unseen for this long are evicted (0 disables)
		EvictionSchedule string        // Cron format: "*/5 * * * *" = every 5 minutes
	}
	Curated struct {
		SeedPath string // Empty uses the embedded seed
	}
	RateLimit struct {
		PerSecond       float64 // Requests per second per device (0 disables)
		Burst           int
		ClientPerSecond float64 // Requests per second per client IP, checked before device registration (0 disables)
		ClientBurst     int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("version", "dev")
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("auth_mode", "local")
	v.SetDefault("auth_session_secret", "")       // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "720h") // 30 days
	v.SetDefault("auth_token_expiry", "720h")     // 30 days
	v.SetDefault("auth_bcrypt_cost", 12)          // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)     // HTTPS-only cookies
	v.SetDefault("auth_max_login_attempts", 5)    // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m") // Window for counting attempts
	v.SetDefault("auth_lockout_duration", "30m")  // Lockout duration

	// Feed registry defaults
	v.SetDefault("feed_idle_timeout", "30m")
	v.SetDefault("feed_eviction_schedule", "*/5 * * * *")

	v.SetDefault("curated_seed_path", "")

	v.SetDefault("api_rate_limit", 20)
	v.SetDefault("api_rate_burst", 40)
	v.SetDefault("api_client_rate_limit", 50)
	v.SetDefault("api_client_rate_burst", 100)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			Version:                  v.GetString("VERSION"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Auth: Auth{
			Mode:             AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			TokenExpiry:      v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Feeds: Feeds{
			IdleTimeout:      v.GetDuration("FEED_IDLE_TIMEOUT"),
			EvictionSchedule: v.GetString("FEED_EVICTION_SCHEDULE"),
		},
		Curated: Curated{
			SeedPath: v.GetString("CURATED_SEED_PATH"),
		},
		RateLimit: RateLimit{
			PerSecond:       v.GetFloat64("API_RATE_LIMIT"),
			Burst:           v.GetInt("API_RATE_BURST"),
			ClientPerSecond: v.GetFloat64("API_CLIENT_RATE_LIMIT"),
			ClientBurst:     v.GetInt("API_CLIENT_RATE_BURST"),
		},
	}
}
