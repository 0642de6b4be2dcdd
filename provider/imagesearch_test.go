package provider

import (
	"testing"
)

func TestParseDimensions(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		wantW int
		wantH int
	}{
		{"standard", "758 × 1053", 758, 1053},
		{"no spaces", "640×480", 640, 480},
		{"empty", "", 0, 0},
		{"garbage", "very large", 0, 0},
		{"half parsable", "758 × tall", 0, 0},
		{"negative", "-10 × 20", 0, 0},
		{"ascii x not accepted", "758 x 1053", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := parseDimensions(tt.text)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("parseDimensions(%q) = (%d, %d), want (%d, %d)",
					tt.text, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestExtractYahooImages_PrefersDataSrc(t *testing.T) {
	page := `<html><body>
		<li class="ld">
			<a href="https://host.example/page"><img src="https://thumb.example/t.jpg" data-src="https://full.example/f.jpg"></a>
			<div class="title">A cat</div>
		</li>
	</body></html>`

	results := extractYahooImages(parseDoc(t, page), "https://images.search.yahoo.com")
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.ImageURL != "https://full.example/f.jpg" {
		t.Errorf("ImageURL = %q, want data-src value", r.ImageURL)
	}
	if r.ThumbnailURL != "https://thumb.example/t.jpg" {
		t.Errorf("ThumbnailURL = %q, want src value", r.ThumbnailURL)
	}
	if r.Title != "A cat" {
		t.Errorf("Title = %q", r.Title)
	}
	if r.SourceURL != "https://host.example/page" {
		t.Errorf("SourceURL = %q", r.SourceURL)
	}
}

func TestExtractYahooImages_SkipsMissingSrc(t *testing.T) {
	page := `<html><body>
		<li class="ld"><img></li>
		<li class="ld"><img src="https://full.example/ok.jpg"></li>
	</body></html>`

	results := extractYahooImages(parseDoc(t, page), "https://images.search.yahoo.com")
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
}

func TestExtractDuckDuckGoImages_SchemeRelativeAndDimensions(t *testing.T) {
	page := `<html><body>
		<figure class="nsogf_Hpj9UUxfhcwQd5">
			<img src="//external-content.example/img.png">
			<figcaption>
				<p><span>Sunset photo</span></p>
				<p><span>photos.example</span></p>
			</figcaption>
			<a href="https://photos.example/sunset"></a>
			<div><p>758 × 1053</p></div>
		</figure>
	</body></html>`

	results := extractDuckDuckGoImages(parseDoc(t, page), "https://duckduckgo.com")
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.ImageURL != "https://external-content.example/img.png" {
		t.Errorf("ImageURL = %q, want https-prefixed", r.ImageURL)
	}
	if r.Width != 758 || r.Height != 1053 {
		t.Errorf("dimensions = %dx%d, want 758x1053", r.Width, r.Height)
	}
	if r.Title != "Sunset photo" {
		t.Errorf("Title = %q", r.Title)
	}
}

func TestExtractDuckDuckGoImages_FallsBackToPlainFigures(t *testing.T) {
	// Markup drift: no hashed class on figures, extraction still works.
	page := `<html><body>
		<figure><img src="https://img.example/a.jpg"></figure>
		<figure><img src="https://img.example/b.jpg"></figure>
	</body></html>`

	results := extractDuckDuckGoImages(parseDoc(t, page), "https://duckduckgo.com")
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
}

func TestImageProvidersRegistered(t *testing.T) {
	for _, name := range []Name{YahooImage, DuckDuckGoImage} {
		p, ok := Lookup(name)
		if !ok {
			t.Fatalf("provider %q not registered", name)
		}
		if p.ExtractImages == nil {
			t.Errorf("%s: ExtractImages is nil", name)
		}
		if p.ExtractWeb != nil {
			t.Errorf("%s: image provider should not extract web results", name)
		}
	}
}
