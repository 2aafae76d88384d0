package routes

import (
	"filevault/controllers"
	"filevault/middleware"

	"github.com/gin-gonic/gin"
)

func UserRoutes(r *gin.RouterGroup, userController *controllers.UserController) {
	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("/profile", userController.Profile)
		users.PUT("/profile", userController.UpdateProfile)
		users.PUT("/password", userController.ChangePassword)
		users.GET("/stats", userController.Stats)
	}
}
