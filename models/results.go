package models

// SearchResult is one normalized web-search hit. Ordering among results
// reflects the provider's own ranking.
type SearchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// ImageResult is one normalized image-search hit. Width and Height are
// parsed from free-text dimension strings when the provider exposes them;
// zero means unknown. PersistedURL is filled when the source image was
// successfully mirrored into the artifact store.
type ImageResult struct {
	ImageURL     string `json:"imageUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Title        string `json:"title"`
	SourceURL    string `json:"sourceUrl"`
	SourceName   string `json:"sourceName"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	PersistedURL string `json:"persistedUrl,omitempty"`
}

// Heading is one h1/h2/h3 element found on a captured page.
type Heading struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

// ImageRef is one <img> element found on a captured page.
type ImageRef struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// PageSummary is the structural digest of a captured page.
type PageSummary struct {
	Headings        []Heading  `json:"headings"`
	Images          []ImageRef `json:"images"`
	MetaTitle       string     `json:"metaTitle"`
	MetaDescription string     `json:"metaDescription"`
	Excerpt         string     `json:"excerpt,omitempty"`
}

// LeaseStats is a snapshot of browser lease utilisation.
type LeaseStats struct {
	MaxLeases    int `json:"max_leases"`
	ActiveLeases int `json:"active_leases"`
}
