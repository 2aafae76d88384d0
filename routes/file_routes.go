package routes

import (
	"filevault/controllers"
	"filevault/middleware"

	"github.com/gin-gonic/gin"
)

func FileRoutes(r *gin.RouterGroup, fileController *controllers.FileController, bulkController *controllers.BulkController) {
	files := r.Group("/files")
	files.Use(middleware.AuthMiddleware())
	{
		// File CRUD operations
		files.GET("", fileController.List)
		files.GET("/:id", fileController.Get)
		files.POST("/upload", fileController.Upload)
		files.PUT("/:id", fileController.Update)
		files.DELETE("/:id", fileController.Delete)
		files.POST("/:id/restore", fileController.Restore)

		// File operations
		files.GET("/:id/download", fileController.Download)
		files.PUT("/:id/tags", fileController.UpdateTags)

		// Batch operations
		files.POST("/bulk-operations", bulkController.Execute)
	}
}
