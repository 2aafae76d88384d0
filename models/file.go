package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type File struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID  `bson:"user_id" json:"user_id"`
	FolderID     *primitive.ObjectID `bson:"folder_id,omitempty" json:"folder_id,omitempty"`
	Name         string              `bson:"name" json:"name" validate:"required"`
	OriginalName string              `bson:"original_name" json:"original_name"`
	Description  string              `bson:"description" json:"description"`
	Size         int64               `bson:"size" json:"size"`
	MimeType     string              `bson:"mime_type" json:"mime_type"`
	Extension    string              `bson:"extension" json:"extension"`
	StorageKey   string              `bson:"storage_key" json:"storage_key"`
	PublicURL    string              `bson:"public_url" json:"public_url"`
	// Tags holds the lowercase names of linked tags, denormalized from the
	// file_tags join collection so listing and search stay single-collection.
	Tags      []string   `bson:"tags" json:"tags"`
	IsDeleted bool       `bson:"is_deleted" json:"is_deleted"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
}

// IsImage reports whether the file's MIME type is in the image category.
func (f *File) IsImage() bool {
	return strings.HasPrefix(f.MimeType, "image/")
}

func (f *File) IsVideo() bool {
	return strings.HasPrefix(f.MimeType, "video/")
}

func (f *File) IsDocument() bool {
	return strings.HasPrefix(f.MimeType, "application/") || strings.HasPrefix(f.MimeType, "text/")
}

// FileView is the listing/search representation of a file: the stored record
// plus derived category flags, a category thumbnail and joined summaries.
type FileView struct {
	File           `bson:",inline"`
	IsImageFile    bool           `json:"is_image"`
	IsVideoFile    bool           `json:"is_video"`
	IsDocumentFile bool           `json:"is_document"`
	ThumbnailURL   string         `json:"thumbnail_url"`
	Folder         *FolderSummary `json:"folder,omitempty"`
	Owner          *UserSummary   `json:"owner,omitempty"`
}

type FolderSummary struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
	Path string             `json:"path"`
}

type UserSummary struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
}

// NewFileView derives the annotated view of a file. The thumbnail is chosen
// by MIME category; images point at their own public URL.
func NewFileView(f File) FileView {
	view := FileView{
		File:           f,
		IsImageFile:    f.IsImage(),
		IsVideoFile:    f.IsVideo(),
		IsDocumentFile: f.IsDocument(),
	}
	switch {
	case view.IsImageFile:
		view.ThumbnailURL = f.PublicURL
	case view.IsVideoFile:
		view.ThumbnailURL = "/public/thumbnails/video.png"
	case view.IsDocumentFile:
		view.ThumbnailURL = "/public/thumbnails/document.png"
	default:
		view.ThumbnailURL = "/public/thumbnails/generic.png"
	}
	return view
}

type FileUploadRequest struct {
	FolderID    string   `form:"folder_id"`
	Name        string   `form:"name"`
	Description string   `form:"description"`
	Tags        []string `form:"tags"`
}

type FileUpdateRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}
