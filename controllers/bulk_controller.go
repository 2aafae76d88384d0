package controllers

import (
	"encoding/json"

	"filevault/models"
	"filevault/services"
	"filevault/utils"

	"github.com/gin-gonic/gin"
)

type BulkController struct {
	bulkService *services.BulkService
}

func NewBulkController(bulkService *services.BulkService) *BulkController {
	return &BulkController{bulkService: bulkService}
}

// bulkRequestBody mirrors the wire format. The target folder needs three
// states (absent, explicit null for root, folder id), which standard
// binding cannot express, so the raw message is inspected by hand.
type bulkRequestBody struct {
	Operation     string   `json:"operation"`
	FileIDs       []string `json:"file_ids"`
	RenamePattern string   `json:"rename_pattern"`
	Permanent     bool     `json:"permanent"`
}

// parseBulkRequest decodes the body and lifts the target folder into its
// three-state form.
func parseBulkRequest(data []byte) (*models.BulkOperationRequest, error) {
	var body bulkRequestBody
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, err
	}

	req := &models.BulkOperationRequest{
		Operation:     body.Operation,
		FileIDs:       body.FileIDs,
		RenamePattern: body.RenamePattern,
		Permanent:     body.Permanent,
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if rawTarget, present := raw["target_folder_id"]; present {
		req.HasTarget = true
		if string(rawTarget) != "null" {
			var id string
			if err := json.Unmarshal(rawTarget, &id); err != nil {
				return nil, err
			}
			req.TargetFolder = &id
		}
	}

	return req, nil
}

// Execute handles POST /files/bulk-operations.
func (bc *BulkController) Execute(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	data, err := c.GetRawData()
	if err != nil {
		utils.BadRequestResponse(c, "Failed to read request body")
		return
	}

	req, err := parseBulkRequest(data)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ValidationErrorResponse(c, utils.ValidationFields(err))
		return
	}

	response, err := bc.bulkService.Execute(userID, req)
	if err != nil {
		switch err {
		case services.ErrBatchOwnership:
			utils.ForbiddenResponse(c, err.Error())
		case services.ErrMoveTargetRequired, services.ErrRenamePatternRequired:
			utils.BadRequestResponse(c, err.Error())
		case services.ErrNotFound:
			utils.NotFoundResponse(c, "Target folder not found")
		default:
			utils.BadRequestResponse(c, err.Error())
		}
		return
	}

	utils.SuccessResponse(c, "Bulk operation completed", response)
}
