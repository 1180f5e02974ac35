package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/quna/internal/auth"
)

// ProfileController handles the signed-in user's account settings.
type ProfileController struct {
	authService *auth.Service
}

func NewProfileController(authService *auth.Service) *ProfileController {
	return &ProfileController{authService: authService}
}

// ProfileResponse is the signed-in user's account.
type ProfileResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	HasToken bool   `json:"has_token"`
}

// Profile handles GET /api/profile
func (pc *ProfileController) Profile(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == "" {
		respondUnauthorized(c)
		return
	}

	user, err := pc.authService.GetUserByID(c.Request.Context(), userID)
	if errors.Is(err, auth.ErrUserNotFound) {
		respondNotFound(c, "user")
		return
	}
	if err != nil {
		respondInternalError(c, err, "load profile")
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
		HasToken: user.TokenHash != "",
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ChangePassword handles PUT /api/profile/password
func (pc *ProfileController) ChangePassword(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == "" {
		respondUnauthorized(c)
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		respondValidationError(c, map[string]string{"confirm_password": "new passwords do not match"})
		return
	}
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		respondValidationError(c, map[string]string{"new_password": err.Error()})
		return
	}

	err := pc.authService.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, auth.ErrInvalidPassword):
		respondValidationError(c, map[string]string{"current_password": "current password is incorrect"})
	default:
		respondInternalError(c, err, "change password")
	}
}
