package models

// WebSearchResponse is the body of GET /api/search.
type WebSearchResponse struct {
	Success bool           `json:"success"`
	Results []SearchResult `json:"results,omitempty"`
	Error   *ErrorDetail   `json:"error,omitempty"`
	Cache   string         `json:"cache,omitempty"` // "hit" or "miss" when caching is enabled
}

// ImageSearchResponse is the body of GET /api/search/images.
type ImageSearchResponse struct {
	Success bool          `json:"success"`
	Engine  string        `json:"engine"`
	Query   string        `json:"query"`
	Results []ImageResult `json:"results,omitempty"`
	Count   int           `json:"count"`
	Error   *ErrorDetail  `json:"error,omitempty"`
}

// ScreenshotResponse is the body of GET /api/screenshot.
type ScreenshotResponse struct {
	Success       bool         `json:"success"`
	ScreenshotURL string       `json:"screenshotUrl,omitempty"`
	HTML          *PageSummary `json:"html,omitempty"`
	Error         *ErrorDetail `json:"error,omitempty"`
}

// ReadResponse is the body of GET /api/read: the raw captured HTML, its
// persisted-artifact URL, and a Markdown rendition.
type ReadResponse struct {
	Success  bool         `json:"success"`
	HTML     string       `json:"html,omitempty"`
	HTMLURL  string       `json:"htmlUrl,omitempty"`
	Markdown string       `json:"markdown,omitempty"`
	Error    *ErrorDetail `json:"error,omitempty"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status     string     `json:"status"`
	Uptime     string     `json:"uptime"`
	LeaseStats LeaseStats `json:"leases"`
	Version    string     `json:"version"`
}
