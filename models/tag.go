package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tag names are case-normalized to lowercase and unique per owner.
type Tag struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	Name        string             `bson:"name" json:"name" validate:"required"`
	Color       string             `bson:"color" json:"color"`
	Description string             `bson:"description" json:"description"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// FileTag links a file to a tag. The lowercase tag name is carried on the
// file document as well; this collection is the authoritative association.
type FileTag struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FileID    primitive.ObjectID `bson:"file_id" json:"file_id"`
	TagID     primitive.ObjectID `bson:"tag_id" json:"tag_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// TagWithCount is a tag annotated with how many live files carry it.
type TagWithCount struct {
	Tag       `bson:",inline"`
	FileCount int `json:"file_count"`
}

type TagCreateRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=64"`
	Color       string `json:"color" validate:"omitempty,hex_color"`
	Description string `json:"description" validate:"max=500"`
}

type TagUpdateRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=64"`
	Color       *string `json:"color,omitempty" validate:"omitempty,hex_color"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

type FileTagsUpdateRequest struct {
	Tags []string `json:"tags" validate:"required,max=32,dive,min=1,max=64"`
}
