package middleware

import (
	"context"
	"strings"
	"time"

	"filevault/database"
	"filevault/models"
	"filevault/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthMiddleware validates JWT tokens for user authentication
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c)
		if !ok {
			return
		}

		user, err := getUserByID(claims.UserID)
		if err != nil {
			utils.UnauthorizedResponse(c, "User not found")
			c.Abort()
			return
		}

		if !user.IsActive {
			utils.UnauthorizedResponse(c, "Account is deactivated")
			c.Abort()
			return
		}

		utils.SetUserInContext(c, user)
		c.Next()
	}
}

// AdminMiddleware validates JWT tokens and requires the admin role
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c)
		if !ok {
			return
		}

		user, err := getUserByID(claims.UserID)
		if err != nil {
			utils.UnauthorizedResponse(c, "User not found")
			c.Abort()
			return
		}

		if !user.IsActive {
			utils.UnauthorizedResponse(c, "Account is deactivated")
			c.Abort()
			return
		}

		if !user.IsAdmin() {
			utils.ForbiddenResponse(c, "Admin access required")
			c.Abort()
			return
		}

		utils.SetUserInContext(c, user)
		c.Next()
	}
}

func bearerClaims(c *gin.Context) (*utils.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		utils.UnauthorizedResponse(c, "Authorization header required")
		c.Abort()
		return nil, false
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		utils.UnauthorizedResponse(c, "Invalid authorization header format")
		c.Abort()
		return nil, false
	}

	claims, err := utils.ValidateToken(tokenParts[1])
	if err != nil {
		utils.UnauthorizedResponse(c, "Invalid or expired token")
		c.Abort()
		return nil, false
	}

	return claims, true
}

func getUserByID(userID primitive.ObjectID) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err := database.GetCollection(database.UsersCollection).
		FindOne(ctx, bson.M{"_id": userID}).
		Decode(&user)
	if err != nil {
		return nil, err
	}

	return &user, nil
}
