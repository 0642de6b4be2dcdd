// Package provider defines the fixed set of search surfaces the engine can
// drive: entry URLs, query input selectors, result/block selectors, and the
// DOM-to-result extraction for each.
package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/go-rod/rod"

	"github.com/use-agent/relcis/models"
)

// Name identifies one provider.
type Name string

const (
	GoogleWeb       Name = "google"
	BingWeb         Name = "bing"
	YahooWeb        Name = "yahoo"
	DuckDuckGoWeb   Name = "duckduckgo"
	YahooImage      Name = "yahoo-images"
	DuckDuckGoImage Name = "duckduckgo-images"
)

// genericBlockSelectors match CAPTCHA walls regardless of provider.
var genericBlockSelectors = []string{
	"#captcha-form",
	".rc-anchor-content",
}

// Provider is one immutable search surface definition. The registry is built
// at startup; instances are never mutated afterwards.
type Provider struct {
	Name     Name
	EntryURL string
	Origin   string

	// InputSelector locates the query input field on the entry page.
	InputSelector string

	// ResultSelectors signal result presence for this provider.
	ResultSelectors []string

	// BlockSelectors are provider-specific block indicators, checked in
	// addition to the generic CAPTCHA selectors.
	BlockSelectors []string

	// PostSubmit runs after query submission for providers that need an
	// extra navigation step (e.g. switching to an images tab).
	PostSubmit func(ctx context.Context, page *rod.Page, query string) error

	// ExtractWeb maps the result DOM to web-search records, capped at limit.
	ExtractWeb func(doc *goquery.Document, origin string, limit int) []models.SearchResult

	// ExtractImages maps the result DOM to image-search records.
	ExtractImages func(doc *goquery.Document, origin string) []models.ImageResult

	completionMatchers []cascadia.Sel
	blockMatchers      []cascadia.Sel
	completionRace     []string
}

var registry = map[Name]*Provider{}

// webChainNames lists the web providers whose result selectors participate
// in the shared completion race: any of them firing means the results page
// finished rendering, whichever engine is being driven.
var webProviders = []Name{GoogleWeb, BingWeb, YahooWeb, DuckDuckGoWeb}

func init() {
	for _, p := range []*Provider{
		googleProvider(),
		bingProvider(),
		yahooProvider(),
		duckduckgoProvider(),
		yahooImagesProvider(),
		duckduckgoImagesProvider(),
	} {
		registry[p.Name] = p
	}

	var webResults []string
	for _, n := range webProviders {
		webResults = append(webResults, registry[n].ResultSelectors...)
	}

	for _, p := range registry {
		race := p.ResultSelectors
		if p.ExtractWeb != nil {
			race = webResults
		}
		p.completionRace = race
		p.completionMatchers = mustCompile(race)
		p.blockMatchers = mustCompile(append(append([]string{}, p.BlockSelectors...), genericBlockSelectors...))
	}
}

// mustCompile parses a fixed selector list; the set is defined at startup so
// an invalid selector is a programmer error.
func mustCompile(selectors []string) []cascadia.Sel {
	out := make([]cascadia.Sel, 0, len(selectors))
	for _, s := range selectors {
		sel, err := cascadia.Parse(s)
		if err != nil {
			panic(fmt.Sprintf("provider: invalid selector %q: %v", s, err))
		}
		out = append(out, sel)
	}
	return out
}

// Lookup returns the provider registered under name.
func Lookup(name Name) (*Provider, bool) {
	p, ok := registry[name]
	return p, ok
}

// WebChain returns the registered web providers in declaration order.
func WebChain() []Name {
	return append([]Name{}, webProviders...)
}

// CompletionSelectors returns the selectors raced to detect a finished
// results page.
func (p *Provider) CompletionSelectors() []string {
	return p.completionRace
}

// AllBlockSelectors returns the provider-specific plus generic block
// indicators.
func (p *Provider) AllBlockSelectors() []string {
	return append(append([]string{}, p.BlockSelectors...), genericBlockSelectors...)
}

// absURL resolves a possibly relative href against the provider origin.
// Scheme-relative URLs get https; anything unparsable is returned as-is.
func absURL(origin, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	if strings.HasPrefix(href, "/") {
		return origin + href
	}
	if u, err := url.Parse(href); err == nil && u.Scheme == "" {
		return origin + "/" + href
	}
	return href
}
