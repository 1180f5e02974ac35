package auth

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/quna/internal/config"
	"github.com/mrlokans/quna/internal/entities"
)

// AuthController handles account and session endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	config         config.Auth
	throttle       *LoginThrottle
}

// NewAuthController creates a new authentication controller.
func NewAuthController(service *Service, sessionManager *SessionManager, cfg config.Auth) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		config:         cfg,
		throttle: NewLoginThrottle(LoginThrottleConfig{
			MaxAttempts: cfg.MaxLoginAttempts,
			Window:      cfg.RateLimitWindow,
			Lockout:     cfg.LockoutDuration,
		}),
	}
}

// RegisterRoutes registers authentication routes under /api/auth.
func (ac *AuthController) RegisterRoutes(router gin.IRouter, mw *Middleware) {
	group := router.Group("/api/auth")
	group.POST("/register", ac.Register)
	group.POST("/login", ac.Login)
	group.POST("/logout", ac.Logout)
	group.GET("/me", ac.Me)

	tokens := NewAPITokenController(ac.service)
	group.POST("/token", mw.RequireAuth(), tokens.GenerateToken)
	group.DELETE("/token", mw.RequireAuth(), tokens.RevokeToken)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID       string            `json:"id"`
	Username string            `json:"username"`
	Email    string            `json:"email,omitempty"`
	Role     entities.UserRole `json:"role"`
}

func newUserResponse(u *entities.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// Register creates an account and signs it in.
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "code": "bad_request"})
		return
	}

	user, err := ac.service.Register(c.Request.Context(), strings.TrimSpace(req.Username), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "conflict"})
		case errors.Is(err, ErrAuthDisabled):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": "not_found"})
		case isValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "bad_request"})
		default:
			log.Printf("Auth: failed to register %q: %v", req.Username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account", "code": "internal_error"})
		}
		return
	}

	if ac.sessionManager != nil {
		if err := ac.sessionManager.SignIn(c.Request.Context(), user.ID); err != nil {
			log.Printf("Auth: failed to create session for %s: %v", user.ID, err)
		}
	}
	c.JSON(http.StatusCreated, newUserResponse(user))
}

// Login verifies credentials and starts a session.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "code": "bad_request"})
		return
	}
	login := strings.TrimSpace(req.Login)
	clientIP := c.ClientIP()

	if allowed, retryAfter := ac.throttle.Allow(clientIP, login); !allowed {
		seconds := int(math.Ceil(retryAfter.Seconds()))
		c.Header("Retry-After", strconv.Itoa(seconds))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "too many login attempts",
			"code":        "rate_limited",
			"retry_after": seconds,
		})
		return
	}

	user, err := ac.service.Authenticate(c.Request.Context(), login, req.Password)
	if err != nil {
		if locked, _ := ac.throttle.RecordFailure(clientIP, login); locked {
			log.Printf("Auth: too many failed sign-ins for %q from %s", login, clientIP)
		}

		msg := "invalid username or password"
		if errors.Is(err, ErrAccountLocked) {
			msg = "account is locked, try again later"
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": msg, "code": CodeNotAuthenticated})
		return
	}

	ac.throttle.RecordSuccess(clientIP, login)

	if ac.sessionManager != nil {
		if err := ac.sessionManager.SignIn(c.Request.Context(), user.ID); err != nil {
			log.Printf("Auth: failed to create session for %s: %v", user.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session", "code": "internal_error"})
			return
		}
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// Logout destroys the session.
func (ac *AuthController) Logout(c *gin.Context) {
	if ac.sessionManager != nil {
		_ = ac.sessionManager.SignOut(c.Request.Context())
	}
	c.Status(http.StatusNoContent)
}

// Me returns the signed-in user, or 401 for anonymous requests.
func (ac *AuthController) Me(c *gin.Context) {
	userID := GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrAuthRequired.Error(), "code": CodeNotAuthenticated})
		return
	}
	user, err := ac.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrAuthRequired.Error(), "code": CodeNotAuthenticated})
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

func isValidationError(err error) bool {
	for _, target := range []error{
		ErrUsernameRequired, ErrEmailRequired, ErrPasswordRequired,
		ErrUsernameInvalid, ErrEmailInvalid, ErrInvalidRole,
		ErrPasswordTooShort, ErrPasswordTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// APITokenController handles API token management endpoints.
type APITokenController struct {
	service *Service
}

// NewAPITokenController creates a new API token controller.
func NewAPITokenController(service *Service) *APITokenController {
	return &APITokenController{service: service}
}

// GenerateToken creates a new API token for the authenticated user.
func (tc *APITokenController) GenerateToken(c *gin.Context) {
	userID := GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrAuthRequired.Error(), "code": CodeNotAuthenticated})
		return
	}

	token, err := tc.service.GenerateToken(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token", "code": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"message": "Store this token securely - it will not be shown again",
	})
}

// RevokeToken revokes the API token for the authenticated user.
func (tc *APITokenController) RevokeToken(c *gin.Context) {
	userID := GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrAuthRequired.Error(), "code": CodeNotAuthenticated})
		return
	}

	if err := tc.service.RevokeToken(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token", "code": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "token revoked"})
}
