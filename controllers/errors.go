package controllers

import (
	"errors"

	"filevault/services"
	"filevault/utils"

	"github.com/gin-gonic/gin"
)

// serviceError maps the shared service sentinels onto HTTP responses.
// Resources belonging to other users surface as not found so ids do not
// leak across accounts.
func serviceError(c *gin.Context, err error) {
	var notEmpty *services.FolderNotEmptyError
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, "")
	case errors.Is(err, services.ErrNameConflict):
		utils.ConflictResponse(c, "A resource with that name already exists", nil)
	case errors.Is(err, services.ErrBatchOwnership):
		utils.ForbiddenResponse(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, err.Error())
	case errors.Is(err, services.ErrAccountDisabled):
		utils.ForbiddenResponse(c, err.Error())
	case errors.Is(err, services.ErrWrongPassword):
		utils.BadRequestResponse(c, err.Error())
	case errors.As(err, &notEmpty):
		utils.ConflictResponse(c, notEmpty.Error(), map[string]interface{}{
			"files":      notEmpty.Files,
			"subfolders": notEmpty.Subfolders,
		})
	default:
		utils.InternalServerErrorResponse(c, "")
	}
}
