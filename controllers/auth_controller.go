package controllers

import (
	"filevault/models"
	"filevault/services"
	"filevault/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService *services.AuthService
}

func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// Register handles POST /auth/register.
func (ac *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.ValidationFields(err))
		return
	}

	user, tokens, err := ac.authService.Register(&req)
	if err != nil {
		if err == services.ErrNameConflict {
			utils.ConflictResponse(c, "Username or email already in use", nil)
			return
		}
		serviceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Registration successful", gin.H{
		"user":   user,
		"tokens": tokens,
	})
}

// Login handles POST /auth/login.
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.ValidationFields(err))
		return
	}

	user, tokens, err := ac.authService.Login(&req)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Login successful", gin.H{
		"user":   user,
		"tokens": tokens,
	})
}

// Refresh handles POST /auth/refresh.
func (ac *AuthController) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.ValidationFields(err))
		return
	}

	tokens, err := ac.authService.Refresh(req.RefreshToken)
	if err != nil {
		if err == services.ErrInvalidCredentials || err == services.ErrAccountDisabled {
			serviceError(c, err)
			return
		}
		utils.UnauthorizedResponse(c, "Invalid refresh token")
		return
	}

	utils.SuccessResponse(c, "Token refreshed", gin.H{"tokens": tokens})
}

// Me handles GET /auth/me.
func (ac *AuthController) Me(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	utils.SuccessResponse(c, "Profile retrieved", gin.H{"user": user})
}
