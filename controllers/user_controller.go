package controllers

import (
	"filevault/models"
	"filevault/services"
	"filevault/utils"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	userService *services.UserService
}

func NewUserController(userService *services.UserService) *UserController {
	return &UserController{userService: userService}
}

// Profile handles GET /users/profile.
func (uc *UserController) Profile(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	user, err := uc.userService.GetByID(userID)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile retrieved", gin.H{"user": user})
}

// UpdateProfile handles PUT /users/profile.
func (uc *UserController) UpdateProfile(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req models.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.ValidationFields(err))
		return
	}

	user, err := uc.userService.UpdateProfile(userID, &req)
	if err != nil {
		if err == services.ErrNameConflict {
			utils.ConflictResponse(c, "Username or email already in use", nil)
			return
		}
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile updated", gin.H{"user": user})
}

// ChangePassword handles PUT /users/password.
func (uc *UserController) ChangePassword(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.ValidationFields(err))
		return
	}

	if err := uc.userService.ChangePassword(userID, &req); err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Password changed", nil)
}

// Stats handles GET /users/stats.
func (uc *UserController) Stats(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	stats, err := uc.userService.GetStats(userID)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Stats retrieved", gin.H{"stats": stats})
}
