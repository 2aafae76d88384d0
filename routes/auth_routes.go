package routes

import (
	"filevault/controllers"
	"filevault/middleware"

	"github.com/gin-gonic/gin"
)

func AuthRoutes(r *gin.RouterGroup, authController *controllers.AuthController) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.Refresh)
		auth.GET("/me", middleware.AuthMiddleware(), authController.Me)
	}
}
