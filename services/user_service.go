package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"filevault/database"
	"filevault/models"
	"filevault/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrWrongPassword is returned when a password change fails the current
// password check.
var ErrWrongPassword = errors.New("current password is incorrect")

type UserService struct {
	userCollection *mongo.Collection
}

func NewUserService() *UserService {
	return &UserService{
		userCollection: database.GetCollection(database.UsersCollection),
	}
}

func (us *UserService) GetByID(userID primitive.ObjectID) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := us.userCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %v", err)
	}
	return &user, nil
}

// UpdateProfile changes username or email. Both are unique across the
// system.
func (us *UserService) UpdateProfile(userID primitive.ObjectID, req *models.UserUpdateRequest) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	update := bson.M{"updated_at": time.Now()}
	if req.Username != nil {
		update["username"] = strings.ToLower(*req.Username)
	}
	if req.Email != nil {
		update["email"] = strings.ToLower(*req.Email)
	}

	result, err := us.userCollection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": update},
	)
	if err != nil {
		if database.IsDuplicateKeyError(err) {
			return nil, ErrNameConflict
		}
		return nil, fmt.Errorf("failed to update profile: %v", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}

	return us.GetByID(userID)
}

// ChangePassword verifies the current password before replacing it.
func (us *UserService) ChangePassword(userID primitive.ObjectID, req *models.ChangePasswordRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := us.GetByID(userID)
	if err != nil {
		return err
	}

	if !utils.CheckPasswordHash(req.CurrentPassword, user.Password) {
		return ErrWrongPassword
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}

	_, err = us.userCollection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"password": hashed, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %v", err)
	}
	return nil
}

// GetStats returns the caller's storage counters.
func (us *UserService) GetStats(userID primitive.ObjectID) (*models.UserStats, error) {
	user, err := us.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return &models.UserStats{
		StorageUsed:  user.StorageUsed,
		FilesCount:   user.FilesCount,
		FoldersCount: user.FoldersCount,
	}, nil
}
