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

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrInvalidCredentials hides whether the account exists or the
	// password was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountDisabled is returned for deactivated accounts.
	ErrAccountDisabled = errors.New("account is disabled")
)

type AuthService struct {
	userCollection *mongo.Collection
	logger         *logrus.Logger
}

func NewAuthService() *AuthService {
	return &AuthService{
		userCollection: database.GetCollection(database.UsersCollection),
		logger:         logrus.StandardLogger(),
	}
}

// Register creates an account and signs it in.
func (as *AuthService) Register(req *models.RegisterRequest) (*models.User, *utils.TokenPair, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %v", err)
	}

	now := time.Now()
	user := &models.User{
		ID:          primitive.NewObjectID(),
		Username:    strings.ToLower(req.Username),
		Email:       strings.ToLower(req.Email),
		Password:    hashed,
		Role:        models.RoleUser,
		IsActive:    true,
		LastLoginAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := as.userCollection.InsertOne(ctx, user); err != nil {
		if database.IsDuplicateKeyError(err) {
			return nil, nil, ErrNameConflict
		}
		return nil, nil, fmt.Errorf("failed to create user: %v", err)
	}

	tokens, err := utils.GenerateTokenPair(user.ID, user.Email, user.Username, user.Role)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate tokens: %v", err)
	}

	as.logger.WithFields(logrus.Fields{
		"user_id":  user.ID.Hex(),
		"username": user.Username,
	}).Info("user registered")

	return user, tokens, nil
}

// Login authenticates by email and password.
func (as *AuthService) Login(req *models.LoginRequest) (*models.User, *utils.TokenPair, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := as.userCollection.FindOne(ctx, bson.M{"email": strings.ToLower(req.Email)}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to fetch user: %v", err)
	}

	if !utils.CheckPasswordHash(req.Password, user.Password) {
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, nil, ErrAccountDisabled
	}

	now := time.Now()
	_, err = as.userCollection.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"last_login_at": now, "updated_at": now}},
	)
	if err != nil {
		as.logger.WithError(err).WithField("user_id", user.ID.Hex()).
			Warn("failed to record login time")
	}
	user.LastLoginAt = &now

	tokens, err := utils.GenerateTokenPair(user.ID, user.Email, user.Username, user.Role)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate tokens: %v", err)
	}

	return &user, tokens, nil
}

// Refresh exchanges a valid refresh token for a new pair. The user is
// re-read so role and activation changes take effect immediately.
func (as *AuthService) Refresh(refreshToken string) (*utils.TokenPair, error) {
	claims, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = as.userCollection.FindOne(ctx, bson.M{"_id": claims.UserID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user: %v", err)
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	return utils.GenerateTokenPair(user.ID, user.Email, user.Username, user.Role)
}
