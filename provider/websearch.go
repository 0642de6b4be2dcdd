package provider

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/relcis/models"
)

// The web adapters below mirror each engine's result markup as observed.
// Shared edge policy: a record with no URL is dropped; a missing description
// element yields an empty description; results are returned in document
// order, capped at limit.

func googleProvider() *Provider {
	return &Provider{
		Name:            GoogleWeb,
		EntryURL:        "https://www.google.com",
		Origin:          "https://www.google.com",
		InputSelector:   "textarea[name='q']",
		ResultSelectors: []string{`div.MjjYud a[jsname="UWckNb"]`},
		BlockSelectors:  []string{`iframe[title="reCAPTCHA"]`},
		ExtractWeb:      extractGoogleWeb,
	}
}

func extractGoogleWeb(doc *goquery.Document, origin string, limit int) []models.SearchResult {
	results := []models.SearchResult{}
	doc.Find(`div.MjjYud a[jsname="UWckNb"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(results) >= limit {
			return false
		}
		title := strings.TrimSpace(s.Find("h3").First().Text())
		href, _ := s.Attr("href")
		if title == "" || href == "" {
			return true
		}
		desc := strings.TrimSpace(s.Closest("div.MjjYud").Find(`div[data-sncf='1'] span`).Last().Text())
		results = append(results, models.SearchResult{
			Title:       title,
			URL:         absURL(origin, href),
			Description: desc,
		})
		return true
	})
	return results
}

func bingProvider() *Provider {
	return &Provider{
		Name:            BingWeb,
		EntryURL:        "https://www.bing.com",
		Origin:          "https://www.bing.com",
		InputSelector:   "input[name='q']",
		ResultSelectors: []string{"li.b_algo h2 a"},
		ExtractWeb:      extractBingWeb,
	}
}

func extractBingWeb(doc *goquery.Document, origin string, limit int) []models.SearchResult {
	results := []models.SearchResult{}
	doc.Find("li.b_algo h2 a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(results) >= limit {
			return false
		}
		href, _ := s.Attr("href")
		if href == "" {
			return true
		}
		desc := strings.TrimSpace(s.Closest("li.b_algo").Find(".b_caption p").First().Text())
		results = append(results, models.SearchResult{
			Title:       strings.TrimSpace(s.Text()),
			URL:         absURL(origin, href),
			Description: desc,
		})
		return true
	})
	return results
}

func yahooProvider() *Provider {
	return &Provider{
		Name:          YahooWeb,
		EntryURL:      "https://search.yahoo.com",
		Origin:        "https://search.yahoo.com",
		InputSelector: "input[name='p']", // Yahoo uses 'p' for the query
		ResultSelectors: []string{
			".algo-sr a",
		},
		ExtractWeb: extractYahooWeb,
	}
}

func extractYahooWeb(doc *goquery.Document, origin string, limit int) []models.SearchResult {
	results := []models.SearchResult{}
	doc.Find(".algo-sr h3 a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(results) >= limit {
			return false
		}
		href, _ := s.Attr("href")
		if href == "" {
			return true
		}
		desc := strings.TrimSpace(s.Closest(".algo-sr").Find(".compText").First().Text())
		results = append(results, models.SearchResult{
			Title:       strings.TrimSpace(s.Text()),
			URL:         absURL(origin, href),
			Description: desc,
		})
		return true
	})
	return results
}

func duckduckgoProvider() *Provider {
	return &Provider{
		Name:          DuckDuckGoWeb,
		EntryURL:      "https://duckduckgo.com",
		Origin:        "https://duckduckgo.com",
		InputSelector: "input[name='q']",
		ResultSelectors: []string{
			"article h2 a .EKtkFWMYpwzMKOYr0GYm",
		},
		ExtractWeb: extractDuckDuckGoWeb,
	}
}

func extractDuckDuckGoWeb(doc *goquery.Document, origin string, limit int) []models.SearchResult {
	results := []models.SearchResult{}
	doc.Find("article h2 a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(results) >= limit {
			return false
		}
		title := strings.TrimSpace(s.Find(".EKtkFWMYpwzMKOYr0GYm").First().Text())
		href, _ := s.Attr("href")
		if title == "" || href == "" {
			return true
		}
		desc := strings.TrimSpace(s.Closest("article").Find(".OgdwYG6KE2qthn9XQWFC").First().Text())
		results = append(results, models.SearchResult{
			Title:       title,
			URL:         absURL(origin, href),
			Description: desc,
		})
		return true
	})
	return results
}
