package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/relcis/models"
)

// Capturer renders a page and returns its screenshot and serialized DOM.
type Capturer interface {
	Capture(ctx context.Context, url string) (png []byte, html string, err error)
}

// Uploader persists captured artifacts.
type Uploader interface {
	Enabled() bool
	UploadScreenshot(ctx context.Context, png []byte, tag string) (string, error)
	UploadHTML(ctx context.Context, html string, tag string) (string, error)
}

// Summarizer distills page HTML into a structural overview.
type Summarizer interface {
	Summarize(pageHTML, sourceURL string) (*models.PageSummary, error)
}

// Screenshot returns a handler for GET /api/screenshot.
//
// Query parameters:
//
//	url — required page address
//
// The persisted screenshot URL is the whole point of this endpoint, so it
// requires artifact storage and a failed upload fails the request.
func Screenshot(svc Capturer, store Uploader, sum Summarizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		url := strings.TrimSpace(c.Query("url"))
		if url == "" {
			c.JSON(http.StatusBadRequest, models.ScreenshotResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "url parameter is required",
				},
			})
			return
		}
		if store == nil || !store.Enabled() {
			c.JSON(http.StatusInternalServerError, models.ScreenshotResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeUpload,
					Message: "artifact storage is not configured",
				},
			})
			return
		}

		png, pageHTML, err := svc.Capture(c.Request.Context(), url)
		if err != nil {
			c.JSON(statusFor(err), models.ScreenshotResponse{
				Success: false,
				Error:   detailOf(err),
			})
			return
		}

		screenshotURL, err := store.UploadScreenshot(c.Request.Context(), png, url)
		if err != nil {
			c.JSON(statusFor(err), models.ScreenshotResponse{
				Success: false,
				Error:   detailOf(err),
			})
			return
		}

		summary, err := sum.Summarize(pageHTML, url)
		if err != nil {
			// The screenshot is already persisted; a summary failure only
			// degrades the response.
			slog.Warn("page summary failed", "url", url, "error", err)
			summary = nil
		}

		c.JSON(http.StatusOK, models.ScreenshotResponse{
			Success:       true,
			ScreenshotURL: screenshotURL,
			HTML:          summary,
		})
	}
}
