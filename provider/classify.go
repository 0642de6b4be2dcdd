package provider

import (
	"context"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/go-rod/rod"
	"golang.org/x/net/html"

	"github.com/use-agent/relcis/models"
)

// Classification is the detector's verdict on a page state.
type Classification int

const (
	// Indeterminate means neither results nor a block indicator appeared
	// within the wait budget. Treated as a recoverable failure.
	Indeterminate Classification = iota

	// ResultsPresent means at least one result selector matched and no
	// block indicator did.
	ResultsPresent

	// Blocked means a CAPTCHA or equivalent block indicator matched.
	// Block indicators take precedence over result selectors.
	Blocked
)

func (c Classification) String() string {
	switch c {
	case ResultsPresent:
		return "results-present"
	case Blocked:
		return "blocked"
	default:
		return "indeterminate"
	}
}

// Classify inspects a serialized page snapshot. Any block indicator match
// classifies Blocked even when a result selector also matches.
func (p *Provider) Classify(pageHTML string) Classification {
	doc, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return Indeterminate
	}
	for _, sel := range p.blockMatchers {
		if cascadia.Query(doc, sel) != nil {
			return Blocked
		}
	}
	for _, sel := range p.completionMatchers {
		if cascadia.Query(doc, sel) != nil {
			return ResultsPresent
		}
	}
	return Indeterminate
}

// AwaitOutcome waits up to timeout for any completion or block selector to
// appear, then classifies a snapshot of the page. A wait timeout with no
// selector firing yields Indeterminate with whatever HTML the page holds.
//
// The returned HTML is the snapshot the classification was made on, so a
// ResultsPresent verdict can be extracted from the exact same bytes.
func AwaitOutcome(ctx context.Context, page *rod.Page, p *Provider, timeout time.Duration) (Classification, string, error) {
	pt := page.Context(ctx).Timeout(timeout)

	race := pt.Race()
	for _, sel := range p.CompletionSelectors() {
		race = race.Element(sel)
	}
	for _, sel := range p.AllBlockSelectors() {
		race = race.Element(sel)
	}

	if _, err := race.Do(); err != nil {
		if ctx.Err() != nil {
			return Indeterminate, "", models.NewSearchError(
				models.ErrCodeNavigation, "classification wait canceled", ctx.Err())
		}
		// Timed out with no selector firing.
		snapshot, herr := page.Context(ctx).HTML()
		if herr != nil {
			snapshot = ""
		}
		return Indeterminate, snapshot, nil
	}

	snapshot, err := page.Context(ctx).HTML()
	if err != nil {
		return Indeterminate, "", models.NewSearchError(
			models.ErrCodeNavigation, "failed to snapshot page for classification", err)
	}
	return p.Classify(snapshot), snapshot, nil
}
