package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/relcis/cache"
	"github.com/use-agent/relcis/models"
)

// WebSearcher runs the fallback web-search chain.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

// Search returns a handler for GET /api/search.
//
// Query parameters:
//
//	query — required search terms
func Search(svc WebSearcher, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := strings.TrimSpace(c.Query("query"))
		if query == "" {
			c.JSON(http.StatusBadRequest, models.WebSearchResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "query parameter is required",
				},
			})
			return
		}

		key := cache.Key(query)
		if results, ok := cc.Get(key); ok {
			c.JSON(http.StatusOK, models.WebSearchResponse{
				Success: true,
				Results: results,
				Cache:   "hit",
			})
			return
		}

		results, err := svc.Search(c.Request.Context(), query)
		if err != nil {
			detail := detailOf(err)
			c.JSON(statusFor(err), models.WebSearchResponse{
				Success: false,
				Error:   detail,
			})
			return
		}

		cc.Set(key, results)

		resp := models.WebSearchResponse{Success: true, Results: results}
		if cc.Enabled() {
			resp.Cache = "miss"
		}
		c.JSON(http.StatusOK, resp)
	}
}
