package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/use-agent/relcis/models"
)

func yahooImagesProvider() *Provider {
	return &Provider{
		Name:            YahooImage,
		EntryURL:        "https://images.search.yahoo.com",
		Origin:          "https://images.search.yahoo.com",
		InputSelector:   "input[type='text']",
		ResultSelectors: []string{".ld"},
		ExtractImages:   extractYahooImages,
	}
}

func extractYahooImages(doc *goquery.Document, origin string) []models.ImageResult {
	results := []models.ImageResult{}
	doc.Find(".ld").Each(func(_ int, s *goquery.Selection) {
		img := s.Find("img").First()
		src, _ := img.Attr("src")
		if src == "" {
			return
		}
		imageURL := src
		if ds, ok := img.Attr("data-src"); ok && ds != "" {
			imageURL = ds
		}
		link := s.Find("a").First()
		sourceURL, _ := link.Attr("href")
		results = append(results, models.ImageResult{
			ImageURL:     absURL(origin, imageURL),
			ThumbnailURL: absURL(origin, src),
			Title:        strings.TrimSpace(s.Find(".title").First().Text()),
			SourceURL:    absURL(origin, sourceURL),
			SourceName:   strings.TrimSpace(link.Text()),
		})
	})
	return results
}

func duckduckgoImagesProvider() *Provider {
	return &Provider{
		Name:          DuckDuckGoImage,
		EntryURL:      "https://duckduckgo.com",
		Origin:        "https://duckduckgo.com",
		InputSelector: "input[name='q']",
		ResultSelectors: []string{
			"figure.nsogf_Hpj9UUxfhcwQd5 img",
			"figure img", // markup-drift fallback
		},
		PostSubmit:    openImagesTab,
		ExtractImages: extractDuckDuckGoImages,
	}
}

// openImagesTab switches DuckDuckGo from the web results to the images tab,
// falling back to direct navigation when the tab link is absent.
func openImagesTab(ctx context.Context, page *rod.Page, query string) error {
	pt := page.Context(ctx)

	tab, err := pt.Timeout(5 * time.Second).Element(`a[data-zci-link="images"]`)
	if err == nil {
		if cerr := tab.Click(proto.InputMouseButtonLeft, 1); cerr == nil {
			return nil
		}
	}

	direct := fmt.Sprintf("https://duckduckgo.com/?q=%s&iax=images&ia=images", url.QueryEscape(query))
	if err := pt.Navigate(direct); err != nil {
		return models.NewSearchError(
			models.ErrCodeNavigation,
			"direct navigation to duckduckgo images failed",
			err,
		)
	}
	if err := pt.WaitLoad(); err != nil {
		return models.NewSearchError(
			models.ErrCodeNavigation,
			"duckduckgo images page did not load",
			err,
		)
	}
	return nil
}

func extractDuckDuckGoImages(doc *goquery.Document, origin string) []models.ImageResult {
	figures := doc.Find("figure.nsogf_Hpj9UUxfhcwQd5")
	if figures.Length() == 0 {
		figures = doc.Find("figure")
	}

	results := []models.ImageResult{}
	figures.Each(func(_ int, s *goquery.Selection) {
		img := s.Find("img").First()
		src, _ := img.Attr("src")
		if src == "" {
			return
		}
		if strings.HasPrefix(src, "//") {
			src = "https:" + src
		}
		sourceURL, _ := s.Find("a").First().Attr("href")
		width, height := parseDimensions(s.Find("div p").First().Text())

		results = append(results, models.ImageResult{
			ImageURL:     src,
			ThumbnailURL: src,
			Title:        strings.TrimSpace(s.Find("figcaption p span").First().Text()),
			SourceURL:    absURL(origin, sourceURL),
			SourceName:   strings.TrimSpace(s.Find("figcaption p:last-child span").First().Text()),
			Width:        width,
			Height:       height,
		})
	})
	return results
}

// parseDimensions parses free-text like "758 × 1053" into width and height.
// Absent or unparsable dimensions yield zeros, never an error.
func parseDimensions(text string) (int, int) {
	parts := strings.Split(text, "×")
	if len(parts) != 2 {
		return 0, 0
	}
	w, werr := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, herr := strconv.Atoi(strings.TrimSpace(parts[1]))
	if werr != nil || herr != nil || w <= 0 || h <= 0 {
		return 0, 0
	}
	return w, h
}
