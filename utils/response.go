package utils

import (
	"math"
	"net/http"
	"time"

	"filevault/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SuccessResponse sends a successful API response
func SuccessResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, models.APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// CreatedResponse sends a 201 created response
func CreatedResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, models.APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// ErrorResponse sends an error API response
func ErrorResponse(c *gin.Context, statusCode int, message string, details map[string]interface{}) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Message: message,
		Error: &models.APIError{
			Code:    http.StatusText(statusCode),
			Message: message,
			Details: details,
		},
		Timestamp: time.Now(),
	})
}

// ValidationErrorResponse sends a 400 with per-field detail
func ValidationErrorResponse(c *gin.Context, fields map[string]interface{}) {
	ErrorResponse(c, http.StatusBadRequest, "Validation failed", fields)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized access"
	}
	ErrorResponse(c, http.StatusUnauthorized, message, nil)
}

func ForbiddenResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Access forbidden"
	}
	ErrorResponse(c, http.StatusForbidden, message, nil)
}

func NotFoundResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	ErrorResponse(c, http.StatusNotFound, message, nil)
}

func ConflictResponse(c *gin.Context, message string, details map[string]interface{}) {
	ErrorResponse(c, http.StatusConflict, message, details)
}

func InternalServerErrorResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	ErrorResponse(c, http.StatusInternalServerError, message, nil)
}

func BadRequestResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, message, nil)
}

func TooManyRequestsResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Rate limit exceeded"
	}
	ErrorResponse(c, http.StatusTooManyRequests, message, nil)
}

// PaginationMeta computes the pagination block for listing responses.
func PaginationMeta(page, limit, total int) models.Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return models.Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && total > 0,
	}
}

// PaginatedResponse sends a paginated response
func PaginatedResponse(c *gin.Context, message string, data interface{}, page, limit, total int) {
	meta := PaginationMeta(page, limit, total)
	c.JSON(http.StatusOK, models.APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      &meta,
		Timestamp: time.Now(),
	})
}

// GetUserFromContext gets user from gin context
func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	user, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	userModel, ok := user.(*models.User)
	return userModel, ok
}

// GetUserIDFromContext gets user ID from gin context
func GetUserIDFromContext(c *gin.Context) (primitive.ObjectID, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return primitive.NilObjectID, false
	}
	id, ok := userID.(primitive.ObjectID)
	return id, ok
}

// SetUserInContext sets user in gin context
func SetUserInContext(c *gin.Context, user *models.User) {
	c.Set("user", user)
	c.Set("user_id", user.ID)
}
