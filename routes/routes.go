package routes

import (
	"filevault/controllers"
	"filevault/middleware"
	"filevault/services"
	"filevault/storage"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, blobs storage.Client) {
	// Global middleware
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(gin.Recovery())

	fileService := services.NewFileService(blobs)
	searchService := services.NewSearchService(fileService)
	bulkService := services.NewBulkService(fileService)
	folderService := services.NewFolderService(fileService)
	tagService := services.NewTagService()
	userService := services.NewUserService()
	authService := services.NewAuthService()
	adminService := services.NewAdminService(blobs)

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimitMiddleware())
	{
		// Public routes
		AuthRoutes(v1, controllers.NewAuthController(authService))

		// Protected routes
		UserRoutes(v1, controllers.NewUserController(userService))
		FileRoutes(v1,
			controllers.NewFileController(fileService, tagService),
			controllers.NewBulkController(bulkService),
		)
		FolderRoutes(v1, controllers.NewFolderController(folderService))
		TagRoutes(v1, controllers.NewTagController(tagService))
		SearchRoutes(v1, controllers.NewSearchController(searchService))
	}

	// Admin routes
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AdminMiddleware())
	{
		AdminRoutes(admin, controllers.NewAdminController(adminService))
	}
}
