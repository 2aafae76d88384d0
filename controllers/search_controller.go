package controllers

import (
	"filevault/models"
	"filevault/services"
	"filevault/utils"

	"github.com/gin-gonic/gin"
)

type SearchController struct {
	searchService *services.SearchService
}

func NewSearchController(searchService *services.SearchService) *SearchController {
	return &SearchController{searchService: searchService}
}

// Search handles GET /search. All listing facets apply; the free-text
// query widens to names, descriptions and tags.
func (sc *SearchController) Search(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	filters, problems := parseFileFilters(c)
	if problems != nil {
		utils.ValidationErrorResponse(c, problems)
		return
	}

	query := c.Query("q")
	if query == "" {
		query = filters.Search
	}
	filters.Search = query

	page := utils.ParsePage(c.Query("page"))
	limit := utils.ParseLimit(c.Query("limit"))

	results, total, err := sc.searchService.Search(userID, query, page, limit, filters)
	if err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	echo := map[string]string{}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 && values[0] != "" {
			echo[key] = values[0]
		}
	}

	response := models.SearchResponse{
		Query:      query,
		Results:    results,
		Pagination: utils.PaginationMeta(page, limit, total),
		Filters:    echo,
	}

	utils.SuccessResponse(c, "Search completed", response)
}

// History handles GET /search/history.
func (sc *SearchController) History(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	limit := utils.ParseLimit(c.Query("limit"))
	history, err := sc.searchService.GetHistory(userID, limit)
	if err != nil {
		utils.InternalServerErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, "Search history retrieved", gin.H{"history": history})
}
