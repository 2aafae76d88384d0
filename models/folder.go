package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Folder struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID  `bson:"user_id" json:"user_id"`
	ParentID    *primitive.ObjectID `bson:"parent_id,omitempty" json:"parent_id,omitempty"`
	Name        string              `bson:"name" json:"name" validate:"required"`
	Description string              `bson:"description" json:"description"`
	Path        string              `bson:"path" json:"path"`
	Color       string              `bson:"color" json:"color"`
	IsDeleted   bool                `bson:"is_deleted" json:"is_deleted"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time          `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
}

// FolderTree is a folder with its resolved children, used by the tree endpoint.
type FolderTree struct {
	Folder   *Folder       `json:"folder"`
	Children []*FolderTree `json:"children,omitempty"`
}

// FolderContents groups what lives directly under a folder.
type FolderContents struct {
	Folder     *Folder    `json:"folder"`
	Subfolders []Folder   `json:"subfolders"`
	Files      []FileView `json:"files"`
	FilesTotal int        `json:"files_total"`
	TotalSize  int64      `json:"total_size"`
}

type FolderCreateRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255,folder_name"`
	ParentID    string `json:"parent_id,omitempty"`
	Description string `json:"description" validate:"max=1000"`
	Color       string `json:"color" validate:"omitempty,hex_color"`
}

type FolderUpdateRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255,folder_name"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Color       *string `json:"color,omitempty" validate:"omitempty,hex_color"`
}
