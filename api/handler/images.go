package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/relcis/config"
	"github.com/use-agent/relcis/models"
	"github.com/use-agent/relcis/provider"
)

// ImageSearcher runs a single-engine image search.
type ImageSearcher interface {
	SearchImages(ctx context.Context, query string, engine provider.Name, count int) ([]models.ImageResult, error)
}

// ImageMirror re-hosts result images on the CDN.
type ImageMirror interface {
	Enabled() bool
	MirrorImages(ctx context.Context, results []models.ImageResult, query string)
}

// imageEngines maps the public engine parameter to provider names.
var imageEngines = map[string]provider.Name{
	"yahoo":      provider.YahooImage,
	"duckduckgo": provider.DuckDuckGoImage,
}

// Images returns a handler for GET /api/search/images.
//
// Query parameters:
//
//	query  — required search terms
//	engine — "yahoo" (default) or "duckduckgo"
//	count  — results to return, clamped to the configured maximum
func Images(svc ImageSearcher, mirror ImageMirror, cfg config.SearchConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := strings.TrimSpace(c.Query("query"))
		if query == "" {
			imagesError(c, http.StatusBadRequest, &models.ErrorDetail{
				Code:    models.ErrCodeInvalidInput,
				Message: "query parameter is required",
			})
			return
		}

		engineParam := c.DefaultQuery("engine", "yahoo")
		engine, ok := imageEngines[engineParam]
		if !ok {
			imagesError(c, http.StatusBadRequest, &models.ErrorDetail{
				Code:    models.ErrCodeInvalidInput,
				Message: "engine must be one of: yahoo, duckduckgo",
			})
			return
		}

		count := cfg.DefaultImageCount
		if raw := c.Query("count"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				imagesError(c, http.StatusBadRequest, &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "count must be an integer",
				})
				return
			}
			count = n
		}
		if count < 1 {
			count = 1
		}
		if count > cfg.MaxImageCount {
			count = cfg.MaxImageCount
		}

		results, err := svc.SearchImages(c.Request.Context(), query, engine, count)
		if err != nil {
			detail := detailOf(err)
			c.JSON(statusFor(err), models.ImageSearchResponse{
				Success: false,
				Engine:  engineParam,
				Query:   query,
				Error:   detail,
			})
			return
		}

		if mirror != nil && mirror.Enabled() {
			mirror.MirrorImages(c.Request.Context(), results, query)
		}

		c.JSON(http.StatusOK, models.ImageSearchResponse{
			Success: true,
			Engine:  engineParam,
			Query:   query,
			Results: results,
			Count:   len(results),
		})
	}
}

func imagesError(c *gin.Context, status int, detail *models.ErrorDetail) {
	c.JSON(status, models.ImageSearchResponse{Success: false, Error: detail})
}
