package routes

import (
	"filevault/controllers"
	"filevault/middleware"

	"github.com/gin-gonic/gin"
)

func SearchRoutes(r *gin.RouterGroup, searchController *controllers.SearchController) {
	search := r.Group("/search")
	search.Use(middleware.AuthMiddleware())
	{
		search.GET("", searchController.Search)
		search.GET("/history", searchController.History)
	}
}
