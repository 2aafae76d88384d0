package routes

import (
	"filevault/controllers"
	"filevault/middleware"

	"github.com/gin-gonic/gin"
)

func FolderRoutes(r *gin.RouterGroup, folderController *controllers.FolderController) {
	folders := r.Group("/folders")
	folders.Use(middleware.AuthMiddleware())
	{
		folders.GET("", folderController.List)
		folders.GET("/tree", folderController.Tree)
		folders.POST("", folderController.Create)
		folders.GET("/:id", folderController.Contents)
		folders.PUT("/:id", folderController.Update)
		folders.DELETE("/:id", folderController.Delete)
	}
}
