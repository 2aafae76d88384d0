package routes

import (
	"filevault/controllers"

	"github.com/gin-gonic/gin"
)

func AdminRoutes(r *gin.RouterGroup, adminController *controllers.AdminController) {
	r.GET("/stats", adminController.Stats)

	users := r.Group("/users")
	{
		users.GET("", adminController.Users)
		users.GET("/:id", adminController.User)
		users.POST("", adminController.CreateUser)
		users.PUT("/:id", adminController.UpdateUser)
		users.DELETE("/:id", adminController.DeleteUser)
	}
}
