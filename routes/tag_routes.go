package routes

import (
	"filevault/controllers"
	"filevault/middleware"

	"github.com/gin-gonic/gin"
)

func TagRoutes(r *gin.RouterGroup, tagController *controllers.TagController) {
	tags := r.Group("/tags")
	tags.Use(middleware.AuthMiddleware())
	{
		tags.GET("", tagController.List)
		tags.POST("", tagController.Create)
		tags.PUT("/:id", tagController.Update)
		tags.DELETE("/:id", tagController.Delete)
	}
}
