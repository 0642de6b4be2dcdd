package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// errorDetail mirrors the relcis API error envelope.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// webSearchResponse mirrors the relcis web search API response.
type webSearchResponse struct {
	Success bool `json:"success"`
	Results []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
	} `json:"results"`
	Error *errorDetail `json:"error"`
	Cache string       `json:"cache"`
}

// imageSearchResponse mirrors the relcis image search API response.
type imageSearchResponse struct {
	Success bool   `json:"success"`
	Engine  string `json:"engine"`
	Query   string `json:"query"`
	Results []struct {
		ImageURL     string `json:"imageUrl"`
		ThumbnailURL string `json:"thumbnailUrl"`
		Title        string `json:"title"`
		SourceURL    string `json:"sourceUrl"`
		SourceName   string `json:"sourceName"`
		PersistedURL string `json:"persistedUrl"`
	} `json:"results"`
	Count int          `json:"count"`
	Error *errorDetail `json:"error"`
}

// screenshotResponse mirrors the relcis screenshot API response.
type screenshotResponse struct {
	Success       bool   `json:"success"`
	ScreenshotURL string `json:"screenshotUrl"`
	HTML          *struct {
		MetaTitle       string `json:"metaTitle"`
		MetaDescription string `json:"metaDescription"`
		Excerpt         string `json:"excerpt"`
		Headings        []struct {
			Tag  string `json:"tag"`
			Text string `json:"text"`
		} `json:"headings"`
	} `json:"html"`
	Error *errorDetail `json:"error"`
}

// readResponse mirrors the relcis read API response.
type readResponse struct {
	Success  bool         `json:"success"`
	HTML     string       `json:"html"`
	HTMLURL  string       `json:"htmlUrl"`
	Markdown string       `json:"markdown"`
	Error    *errorDetail `json:"error"`
}

func main() {
	apiURL := os.Getenv("RELCIS_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:3237"
	}
	apiKey := os.Getenv("RELCIS_API_KEY")

	s := server.NewMCPServer(
		"relcis",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	webSearchTool := mcp.NewTool("web_search",
		mcp.WithDescription("Search the web and return the top organic results (title, URL, description). Falls back across multiple search engines when one blocks or fails."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The search query"),
		),
	)
	s.AddTool(webSearchTool, handleWebSearch(apiURL, apiKey))

	imageSearchTool := mcp.NewTool("image_search",
		mcp.WithDescription("Search for images and return image URLs with titles and source pages."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The search query"),
		),
		mcp.WithString("engine",
			mcp.Description("Image search engine: 'yahoo' (default) or 'duckduckgo'"),
			mcp.Enum("yahoo", "duckduckgo"),
		),
		mcp.WithNumber("count",
			mcp.Description("Number of images to return (default: 1, max: 20)"),
		),
	)
	s.AddTool(imageSearchTool, handleImageSearch(apiURL, apiKey))

	screenshotTool := mcp.NewTool("screenshot_page",
		mcp.WithDescription("Render a web page in a headless browser, take a full-page screenshot, and return its hosted URL plus a structural summary of the page."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the page to capture"),
		),
	)
	s.AddTool(screenshotTool, handleScreenshot(apiURL, apiKey))

	readTool := mcp.NewTool("read_page",
		mcp.WithDescription("Render a web page in a headless browser and return its content as Markdown. Handles JavaScript-heavy pages."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the page to read"),
		),
	)
	s.AddTool(readTool, handleRead(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiGet sends a GET request to the relcis API and returns the response body.
func apiGet(ctx context.Context, client *http.Client, apiURL, apiKey, path string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func errText(prefix string, detail *errorDetail) string {
	if detail != nil {
		return fmt.Sprintf("[%s] %s", detail.Code, detail.Message)
	}
	return prefix
}

func handleWebSearch(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 300 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}

		body, err := apiGet(ctx, client, apiURL, apiKey, "/api/search", url.Values{"query": {query}})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search request failed: %v", err)), nil
		}

		var resp webSearchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(errText("search failed", resp.Error)), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Found %d results for %q:\n\n", len(resp.Results), query))
		for i, r := range resp.Results {
			sb.WriteString(fmt.Sprintf("%d. %s\n%s\n%s\n\n", i+1, r.Title, r.URL, r.Description))
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleImageSearch(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 300 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}

		params := url.Values{"query": {query}}
		if engine := request.GetString("engine", ""); engine != "" {
			params.Set("engine", engine)
		}
		if count := request.GetInt("count", 0); count > 0 {
			params.Set("count", fmt.Sprintf("%d", count))
		}

		body, err := apiGet(ctx, client, apiURL, apiKey, "/api/search/images", params)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("image search request failed: %v", err)), nil
		}

		var resp imageSearchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(errText("image search failed", resp.Error)), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Found %d images for %q (engine: %s):\n\n", resp.Count, query, resp.Engine))
		for i, r := range resp.Results {
			imageURL := r.ImageURL
			if r.PersistedURL != "" {
				imageURL = r.PersistedURL
			}
			sb.WriteString(fmt.Sprintf("%d. %s\nImage: %s\nSource: %s (%s)\n\n",
				i+1, r.Title, imageURL, r.SourceURL, r.SourceName))
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleScreenshot(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 300 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pageURL, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		body, err := apiGet(ctx, client, apiURL, apiKey, "/api/screenshot", url.Values{"url": {pageURL}})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("screenshot request failed: %v", err)), nil
		}

		var resp screenshotResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(errText("screenshot failed", resp.Error)), nil
		}

		var sb strings.Builder
		sb.WriteString("Screenshot: " + resp.ScreenshotURL + "\n")
		if resp.HTML != nil {
			sb.WriteString("Title: " + resp.HTML.MetaTitle + "\n")
			if resp.HTML.MetaDescription != "" {
				sb.WriteString("Description: " + resp.HTML.MetaDescription + "\n")
			}
			if len(resp.HTML.Headings) > 0 {
				sb.WriteString("\nHeadings:\n")
				for _, h := range resp.HTML.Headings {
					sb.WriteString(fmt.Sprintf("[%s] %s\n", h.Tag, h.Text))
				}
			}
			if resp.HTML.Excerpt != "" {
				sb.WriteString("\n" + resp.HTML.Excerpt + "\n")
			}
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleRead(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 300 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pageURL, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		body, err := apiGet(ctx, client, apiURL, apiKey, "/api/read", url.Values{"url": {pageURL}})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("read request failed: %v", err)), nil
		}

		var resp readResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(errText("read failed", resp.Error)), nil
		}

		content := resp.Markdown
		if content == "" {
			content = resp.HTML
		}
		if resp.HTMLURL != "" {
			content += "\n\n---\nArchived copy: " + resp.HTMLURL
		}
		return mcp.NewToolResultText(content), nil
	}
}
