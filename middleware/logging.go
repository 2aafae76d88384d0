package middleware

import (
	"time"

	"filevault/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LoggingMiddleware logs HTTP requests as structured JSON
func LoggingMiddleware() gin.HandlerFunc {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		var userID string
		var username string
		if user, exists := utils.GetUserFromContext(c); exists {
			userID = user.ID.Hex()
			username = user.Username
		}

		entry := logger.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency":     latency.String(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        path,
			"user_agent":  c.Request.UserAgent(),
			"user_id":     userID,
			"username":    username,
			"errors":      c.Errors.String(),
		})

		switch {
		case statusCode >= 500:
			entry.Error("request failed")
		case statusCode >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request completed")
		}
	}
}
