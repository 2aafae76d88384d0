package controllers

import (
	"filevault/models"
	"filevault/services"
	"filevault/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TagController struct {
	tagService *services.TagService
}

func NewTagController(tagService *services.TagService) *TagController {
	return &TagController{tagService: tagService}
}

// Create handles POST /tags.
func (tc *TagController) Create(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req models.TagCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.ValidationFields(err))
		return
	}

	tag, err := tc.tagService.CreateTag(userID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Tag created", gin.H{"tag": tag})
}

// List handles GET /tags.
func (tc *TagController) List(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	tags, err := tc.tagService.GetUserTags(userID)
	if err != nil {
		utils.InternalServerErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, "Tags retrieved", gin.H{"tags": tags})
}

// Update handles PUT /tags/:id.
func (tc *TagController) Update(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	tagID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid tag id")
		return
	}

	var req models.TagUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.ValidationFields(err))
		return
	}

	tag, err := tc.tagService.UpdateTag(userID, tagID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Tag updated", gin.H{"tag": tag})
}

// Delete handles DELETE /tags/:id.
func (tc *TagController) Delete(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	tagID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid tag id")
		return
	}

	if err := tc.tagService.DeleteTag(userID, tagID); err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Tag deleted", nil)
}
