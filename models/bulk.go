package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	BulkOpDelete = "delete"
	BulkOpMove   = "move"
	BulkOpCopy   = "copy"
	BulkOpRename = "rename"
)

// BulkOperationRequest is the body of POST /files/bulk-operations.
// TargetFolderID is a json.RawMessage-free three-state field: for move the
// key must be present, and an explicit null means the root folder.
type BulkOperationRequest struct {
	Operation     string   `json:"operation" validate:"required,oneof=delete move copy rename"`
	FileIDs       []string `json:"file_ids" validate:"required,min=1,max=500,dive,required"`
	TargetFolder  *string  `json:"-"`
	HasTarget     bool     `json:"-"`
	RenamePattern string   `json:"rename_pattern"`
	Permanent     bool     `json:"permanent"`
}

// BulkOperationResult is one per-item outcome. The batch never fails as a
// whole once the ownership gate has passed; callers inspect these entries.
type BulkOperationResult struct {
	ID      primitive.ObjectID  `json:"id"`
	Success bool                `json:"success"`
	Error   string              `json:"error,omitempty"`
	NewName string              `json:"new_name,omitempty"`
	CopyID  *primitive.ObjectID `json:"copy_id,omitempty"`
}

type BulkOperationResponse struct {
	Operation string                `json:"operation"`
	Results   []BulkOperationResult `json:"results"`
	Total     int                   `json:"total"`
	Succeeded int                   `json:"succeeded"`
	Failed    int                   `json:"failed"`
}
