package provider

import (
	"testing"
)

func mustLookup(t *testing.T, name Name) *Provider {
	t.Helper()
	p, ok := Lookup(name)
	if !ok {
		t.Fatalf("provider %q not registered", name)
	}
	return p
}

func TestClassify_BlockTakesPrecedenceOverResults(t *testing.T) {
	// Each provider's own result markup, rendered alongside a CAPTCHA wall.
	// The block must win on every provider.
	resultMarkup := map[Name]string{
		GoogleWeb:       `<div class="MjjYud"><a jsname="UWckNb" href="https://example.com">Result</a></div>`,
		BingWeb:         `<li class="b_algo"><h2><a href="https://example.com">Result</a></h2></li>`,
		YahooWeb:        `<div class="algo-sr"><h3><a href="https://example.com">Result</a></h3></div>`,
		DuckDuckGoWeb:   `<article><h2><a href="https://example.com"><span class="EKtkFWMYpwzMKOYr0GYm">Result</span></a></h2></article>`,
		YahooImage:      `<li class="ld"><img src="https://img.example/a.jpg"></li>`,
		DuckDuckGoImage: `<figure><img src="https://img.example/a.jpg"></figure>`,
	}

	for name, markup := range resultMarkup {
		p := mustLookup(t, name)

		walled := `<html><body><form id="captcha-form"></form>` + markup + `</body></html>`
		if got := p.Classify(walled); got != Blocked {
			t.Errorf("%s: Classify = %v, want Blocked", name, got)
		}

		// Without the wall the same markup must read as results, so the
		// precedence assertion above cannot pass vacuously.
		clean := `<html><body>` + markup + `</body></html>`
		if got := p.Classify(clean); got != ResultsPresent {
			t.Errorf("%s: Classify = %v, want ResultsPresent without the wall", name, got)
		}
	}
}

func TestClassify_GoogleRecaptchaIframe(t *testing.T) {
	p := mustLookup(t, GoogleWeb)

	page := `<html><body><iframe title="reCAPTCHA" src="about:blank"></iframe></body></html>`
	if got := p.Classify(page); got != Blocked {
		t.Errorf("Classify = %v, want Blocked", got)
	}
}

func TestClassify_ResultsPresent(t *testing.T) {
	p := mustLookup(t, YahooWeb)

	page := `<html><body>
		<div class="algo-sr"><h3><a href="https://example.com">Hit</a></h3></div>
	</body></html>`

	if got := p.Classify(page); got != ResultsPresent {
		t.Errorf("Classify = %v, want ResultsPresent", got)
	}
}

func TestClassify_WebProvidersShareResultSelectors(t *testing.T) {
	// Bing markup appearing while the Yahoo provider is driving still counts
	// as a finished results page: web completion selectors are a shared pool.
	p := mustLookup(t, YahooWeb)

	page := `<html><body>
		<li class="b_algo"><h2><a href="https://example.com">Hit</a></h2></li>
	</body></html>`

	if got := p.Classify(page); got != ResultsPresent {
		t.Errorf("Classify = %v, want ResultsPresent", got)
	}
}

func TestClassify_ImageProvidersUseOwnSelectorsOnly(t *testing.T) {
	p := mustLookup(t, YahooImage)

	page := `<html><body>
		<li class="b_algo"><h2><a href="https://example.com">Web hit</a></h2></li>
	</body></html>`

	if got := p.Classify(page); got != Indeterminate {
		t.Errorf("Classify = %v, want Indeterminate", got)
	}
}

func TestClassify_EmptyPage(t *testing.T) {
	p := mustLookup(t, DuckDuckGoWeb)

	if got := p.Classify("<html><body></body></html>"); got != Indeterminate {
		t.Errorf("Classify = %v, want Indeterminate", got)
	}
}

func TestClassify_GenericCaptchaSelectorOnAllProviders(t *testing.T) {
	page := `<html><body><div class="rc-anchor-content"></div></body></html>`

	for _, name := range []Name{GoogleWeb, BingWeb, YahooWeb, DuckDuckGoWeb, YahooImage, DuckDuckGoImage} {
		p := mustLookup(t, name)
		if got := p.Classify(page); got != Blocked {
			t.Errorf("%s: Classify = %v, want Blocked", name, got)
		}
	}
}

func TestClassificationString(t *testing.T) {
	tests := []struct {
		c    Classification
		want string
	}{
		{Indeterminate, "indeterminate"},
		{ResultsPresent, "results-present"},
		{Blocked, "blocked"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
