package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username" validate:"required,min=3,max=50,username"`
	Email        string             `bson:"email" json:"email" validate:"required,email"`
	Password     string             `bson:"password" json:"-" validate:"required,min=8"`
	Role         string             `bson:"role" json:"role"`
	StorageUsed  int64              `bson:"storage_used" json:"storage_used"`
	FilesCount   int                `bson:"files_count" json:"files_count"`
	FoldersCount int                `bson:"folders_count" json:"folders_count"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	LastLoginAt  *time.Time         `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type UserStats struct {
	StorageUsed  int64 `json:"storage_used"`
	FilesCount   int   `json:"files_count"`
	FoldersCount int   `json:"folders_count"`
}

type UserUpdateRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=50,username"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,strong_password"`
}

type AdminUserCreateRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strong_password"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

type AdminUserUpdateRequest struct {
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
	IsActive *bool   `json:"is_active,omitempty"`
}
