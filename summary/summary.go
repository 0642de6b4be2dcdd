// Package summary distills captured page HTML into a compact structural
// overview (headings, images, metadata) plus optional Markdown and excerpt
// renditions.
package summary

import (
	"fmt"
	"log/slog"
	nurl "net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/use-agent/relcis/models"
)

// Extractor parses page snapshots. The Markdown converter is goroutine-safe
// and reused across requests.
type Extractor struct {
	conv *converter.Converter
}

// NewExtractor builds an Extractor with the standard converter plugins:
// base strips script/style/head noise, commonmark renders standard Markdown,
// and the table plugin keeps tabular structure with minimal cell padding.
func NewExtractor() *Extractor {
	return &Extractor{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(
					table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
				),
			),
		),
	}
}

// Summarize builds a PageSummary from serialized HTML. Headings cover
// h1/h2/h3 in document order; empty headings and images without a src are
// skipped. The excerpt comes from readability and is best-effort.
func (e *Extractor) Summarize(pageHTML, sourceURL string) (*models.PageSummary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("summary: parse html: %w", err)
	}

	s := &models.PageSummary{
		Headings:        []models.Heading{},
		Images:          []models.ImageRef{},
		MetaTitle:       strings.TrimSpace(doc.Find("title").First().Text()),
		MetaDescription: attrOrEmpty(doc.Find(`meta[name="description"]`).First(), "content"),
	}

	doc.Find("h1, h2, h3").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		s.Headings = append(s.Headings, models.Heading{
			Tag:  goquery.NodeName(sel),
			Text: text,
		})
	})

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		if src == "" {
			return
		}
		alt, _ := sel.Attr("alt")
		s.Images = append(s.Images, models.ImageRef{Src: src, Alt: alt})
	})

	s.Excerpt = excerpt(pageHTML, sourceURL)
	return s, nil
}

// ToMarkdown converts page HTML to Markdown. The domain resolves relative
// links so the output is self-contained.
func (e *Extractor) ToMarkdown(pageHTML, domain string) (string, error) {
	return e.conv.ConvertString(pageHTML, converter.WithDomain(domain))
}

// excerpt runs the readability algorithm for a short lead. Failures yield an
// empty excerpt, never an error: the summary stands without it.
func excerpt(pageHTML, sourceURL string) string {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(pageHTML), parsedURL)
	if err != nil {
		slog.Debug("readability excerpt failed", "url", sourceURL, "error", err)
		return ""
	}
	return strings.TrimSpace(article.Excerpt)
}

func attrOrEmpty(sel *goquery.Selection, name string) string {
	v, _ := sel.Attr(name)
	return strings.TrimSpace(v)
}
