package controllers

import (
	"filevault/models"
	"filevault/services"
	"filevault/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FolderController struct {
	folderService *services.FolderService
}

func NewFolderController(folderService *services.FolderService) *FolderController {
	return &FolderController{folderService: folderService}
}

// Create handles POST /folders.
func (fc *FolderController) Create(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req models.FolderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.ValidationFields(err))
		return
	}

	folder, err := fc.folderService.CreateFolder(userID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Folder created", gin.H{"folder": folder})
}

// List handles GET /folders, returning the children of one parent
// ("parent" query, root when absent).
func (fc *FolderController) List(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	folders, err := fc.folderService.GetUserFolders(userID, c.Query("parent"))
	if err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, "Folders retrieved", gin.H{"folders": folders})
}

// Tree handles GET /folders/tree.
func (fc *FolderController) Tree(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	tree, err := fc.folderService.GetFolderTree(userID)
	if err != nil {
		utils.InternalServerErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, "Folder tree retrieved", gin.H{"tree": tree})
}

// Contents handles GET /folders/:id, returning the folder with its
// direct subfolders and a page of files.
func (fc *FolderController) Contents(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	folderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid folder id")
		return
	}

	page := utils.ParsePage(c.Query("page"))
	limit := utils.ParseLimit(c.Query("limit"))

	contents, err := fc.folderService.GetFolderContents(userID, folderID, page, limit)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.PaginatedResponse(c, "Folder contents retrieved", contents, page, limit, contents.FilesTotal)
}

// Update handles PUT /folders/:id.
func (fc *FolderController) Update(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	folderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid folder id")
		return
	}

	var req models.FolderUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.ValidationFields(err))
		return
	}

	folder, err := fc.folderService.UpdateFolder(userID, folderID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Folder updated", gin.H{"folder": folder})
}

// Delete handles DELETE /folders/:id. A true "force" query purges the
// whole subtree, files included.
func (fc *FolderController) Delete(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	folderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid folder id")
		return
	}

	force := c.Query("force") == "true"
	if err := fc.folderService.DeleteFolder(userID, folderID, force); err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Folder deleted", nil)
}
