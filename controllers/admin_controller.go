package controllers

import (
	"filevault/models"
	"filevault/services"
	"filevault/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AdminController struct {
	adminService *services.AdminService
}

func NewAdminController(adminService *services.AdminService) *AdminController {
	return &AdminController{adminService: adminService}
}

// Stats handles GET /admin/stats.
func (ac *AdminController) Stats(c *gin.Context) {
	stats, err := ac.adminService.GetSystemStats()
	if err != nil {
		utils.InternalServerErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, "System stats retrieved", gin.H{"stats": stats})
}

// Users handles GET /admin/users.
func (ac *AdminController) Users(c *gin.Context) {
	page := utils.ParsePage(c.Query("page"))
	limit := utils.ParseLimit(c.Query("limit"))

	list, err := ac.adminService.GetUsers(page, limit, c.Query("search"))
	if err != nil {
		utils.InternalServerErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, "Users retrieved", gin.H{"users": list.Users}, page, limit, int(list.Total))
}

// User handles GET /admin/users/:id.
func (ac *AdminController) User(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user id")
		return
	}

	user, err := ac.adminService.GetUser(userID)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, "User retrieved", gin.H{"user": user})
}

// CreateUser handles POST /admin/users.
func (ac *AdminController) CreateUser(c *gin.Context) {
	var req models.AdminUserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.ValidationFields(err))
		return
	}

	user, err := ac.adminService.CreateUser(&req)
	if err != nil {
		if err == services.ErrNameConflict {
			utils.ConflictResponse(c, "Username or email already in use", nil)
			return
		}
		serviceError(c, err)
		return
	}

	utils.CreatedResponse(c, "User created", gin.H{"user": user})
}

// UpdateUser handles PUT /admin/users/:id.
func (ac *AdminController) UpdateUser(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user id")
		return
	}

	var req models.AdminUserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.ValidationFields(err))
		return
	}

	user, err := ac.adminService.UpdateUser(userID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, "User updated", gin.H{"user": user})
}

// DeleteUser handles DELETE /admin/users/:id, removing the account and
// all of its data.
func (ac *AdminController) DeleteUser(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user id")
		return
	}

	// Admins cannot delete themselves.
	if self, ok := utils.GetUserIDFromContext(c); ok && self == userID {
		utils.BadRequestResponse(c, "Cannot delete your own account")
		return
	}

	if err := ac.adminService.DeleteUser(userID); err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, "User deleted", nil)
}
