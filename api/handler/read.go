package handler

import (
	"context"
	"log/slog"
	"net/http"
	nurl "net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/relcis/models"
)

// PageReader renders a page and returns its serialized DOM.
type PageReader interface {
	Read(ctx context.Context, url string) (string, error)
}

// Markdowner converts page HTML to Markdown.
type Markdowner interface {
	ToMarkdown(pageHTML, domain string) (string, error)
}

// Read returns a handler for GET /api/read: the rendered page HTML, a
// Markdown rendition, and (when artifact storage is configured) a persisted
// copy of the HTML.
//
// Query parameters:
//
//	url — required page address
func Read(svc PageReader, store Uploader, md Markdowner) gin.HandlerFunc {
	return func(c *gin.Context) {
		url := strings.TrimSpace(c.Query("url"))
		if url == "" {
			c.JSON(http.StatusBadRequest, models.ReadResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "url parameter is required",
				},
			})
			return
		}

		pageHTML, err := svc.Read(c.Request.Context(), url)
		if err != nil {
			c.JSON(statusFor(err), models.ReadResponse{
				Success: false,
				Error:   detailOf(err),
			})
			return
		}

		markdown, err := md.ToMarkdown(pageHTML, domainOf(url))
		if err != nil {
			slog.Warn("markdown conversion failed", "url", url, "error", err)
			markdown = ""
		}

		var htmlURL string
		if store != nil && store.Enabled() {
			htmlURL, err = store.UploadHTML(c.Request.Context(), pageHTML, url)
			if err != nil {
				c.JSON(statusFor(err), models.ReadResponse{
					Success: false,
					Error:   detailOf(err),
				})
				return
			}
		}

		c.JSON(http.StatusOK, models.ReadResponse{
			Success:  true,
			HTML:     pageHTML,
			HTMLURL:  htmlURL,
			Markdown: markdown,
		})
	}
}

// domainOf extracts scheme://host for relative-link resolution.
func domainOf(raw string) string {
	u, err := nurl.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Scheme + "://" + u.Host
}
