package controllers

import (
	"filevault/models"
	"filevault/services"
	"filevault/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FileController struct {
	fileService *services.FileService
	tagService  *services.TagService
}

func NewFileController(fileService *services.FileService, tagService *services.TagService) *FileController {
	return &FileController{fileService: fileService, tagService: tagService}
}

// parseFileFilters reads the listing facets off the query string. Facet
// values that fail to parse are collected per field so the client gets
// all problems at once.
func parseFileFilters(c *gin.Context) (*services.FileFilters, map[string]interface{}) {
	problems := map[string]interface{}{}

	filters := &services.FileFilters{
		FolderID:  c.Query("folder_id"),
		Search:    c.Query("search"),
		FileType:  c.Query("type"),
		Tags:      utils.ParseTagsParam(c.Query("tags")),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	var err error
	if filters.MinSize, err = utils.ParseSizeParam(c.Query("min_size")); err != nil {
		problems["min_size"] = err.Error()
	}
	if filters.MaxSize, err = utils.ParseSizeParam(c.Query("max_size")); err != nil {
		problems["max_size"] = err.Error()
	}
	if filters.StartDate, err = utils.ParseDateParam(c.Query("start_date")); err != nil {
		problems["start_date"] = err.Error()
	}
	if filters.EndDate, err = utils.ParseDateParam(c.Query("end_date")); err != nil {
		problems["end_date"] = err.Error()
	}

	if len(problems) > 0 {
		return nil, problems
	}
	return filters, nil
}

// List handles GET /files.
func (fc *FileController) List(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	filters, problems := parseFileFilters(c)
	if problems != nil {
		utils.ValidationErrorResponse(c, problems)
		return
	}

	page := utils.ParsePage(c.Query("page"))
	limit := utils.ParseLimit(c.Query("limit"))

	files, total, err := fc.fileService.GetUserFiles(userID, page, limit, filters)
	if err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, "Files retrieved", gin.H{"files": files}, page, limit, total)
}

// Get handles GET /files/:id.
func (fc *FileController) Get(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	fileID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file id")
		return
	}

	file, err := fc.fileService.GetUserFile(userID, fileID)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, "File retrieved", gin.H{"file": models.NewFileView(*file)})
}

// Upload handles POST /files/upload.
func (fc *FileController) Upload(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "No file provided")
		return
	}

	var req models.FileUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid upload fields")
		return
	}

	file, err := fc.fileService.UploadFile(user, fileHeader, &req)
	if err != nil {
		if err == services.ErrNameConflict || err == services.ErrNotFound {
			serviceError(c, err)
			return
		}
		utils.BadRequestResponse(c, err.Error())
		return
	}

	view := models.NewFileView(*file)
	utils.CreatedResponse(c, "File uploaded", models.UploadResponse{File: &view})
}

// Update handles PUT /files/:id.
func (fc *FileController) Update(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	fileID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file id")
		return
	}

	var req models.FileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.ValidationFields(err))
		return
	}

	file, err := fc.fileService.UpdateFile(userID, fileID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, "File updated", gin.H{"file": models.NewFileView(*file)})
}

// Delete handles DELETE /files/:id. A true "permanent" query removes the
// blob as well; otherwise the file moves to trash.
func (fc *FileController) Delete(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	fileID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file id")
		return
	}

	permanent := c.Query("permanent") == "true"
	if err := fc.fileService.DeleteFile(userID, fileID, permanent); err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, "File deleted", nil)
}

// Restore handles POST /files/:id/restore.
func (fc *FileController) Restore(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	fileID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file id")
		return
	}

	if err := fc.fileService.RestoreFile(userID, fileID); err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, "File restored", nil)
}

// Download handles GET /files/:id/download, returning a short-lived URL.
func (fc *FileController) Download(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	fileID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file id")
		return
	}

	url, err := fc.fileService.GetDownloadURL(userID, fileID)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Download URL generated", gin.H{"download_url": url})
}

// UpdateTags handles PUT /files/:id/tags, replacing the file's tag set.
func (fc *FileController) UpdateTags(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	fileID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file id")
		return
	}

	var req models.FileTagsUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.ValidationFields(err))
		return
	}

	tags, err := fc.tagService.ReplaceFileTags(userID, fileID, req.Tags)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.SuccessResponse(c, "File tags updated", gin.H{"tags": tags})
}
