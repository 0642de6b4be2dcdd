package summary

import (
	"strings"
	"testing"
)

const fixturePage = `<html>
<head>
	<title> The Example Page </title>
	<meta name="description" content="An example page for tests.">
</head>
<body>
	<h1>Main Title</h1>
	<h2>Section One</h2>
	<h3></h3>
	<h2>Section Two</h2>
	<img src="/logo.png" alt="Logo">
	<img alt="no source">
	<img src="https://cdn.example.com/hero.jpg">
	<p>` + loremParagraph + `</p>
</body>
</html>`

// Long enough that readability treats the page as real content.
const loremParagraph = "Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do " +
	"eiusmod tempor incididunt ut labore et dolore magna aliqua. Ut enim ad minim " +
	"veniam, quis nostrud exercitation ullamco laboris nisi ut aliquip ex ea commodo " +
	"consequat. Duis aute irure dolor in reprehenderit in voluptate velit esse cillum."

func TestSummarize(t *testing.T) {
	s, err := NewExtractor().Summarize(fixturePage, "https://example.com/article")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.MetaTitle != "The Example Page" {
		t.Errorf("MetaTitle = %q", s.MetaTitle)
	}
	if s.MetaDescription != "An example page for tests." {
		t.Errorf("MetaDescription = %q", s.MetaDescription)
	}

	wantHeadings := []struct{ tag, text string }{
		{"h1", "Main Title"},
		{"h2", "Section One"},
		{"h2", "Section Two"},
	}
	if len(s.Headings) != len(wantHeadings) {
		t.Fatalf("headings = %+v, want %d entries (empty h3 skipped)", s.Headings, len(wantHeadings))
	}
	for i, want := range wantHeadings {
		if s.Headings[i].Tag != want.tag || s.Headings[i].Text != want.text {
			t.Errorf("heading %d = %+v, want {%s %s}", i, s.Headings[i], want.tag, want.text)
		}
	}

	if len(s.Images) != 2 {
		t.Fatalf("images = %+v, want 2 (srcless img skipped)", s.Images)
	}
	if s.Images[0].Src != "/logo.png" || s.Images[0].Alt != "Logo" {
		t.Errorf("image 0 = %+v", s.Images[0])
	}
	if s.Images[1].Src != "https://cdn.example.com/hero.jpg" {
		t.Errorf("image 1 = %+v", s.Images[1])
	}
}

func TestSummarize_EmptyPage(t *testing.T) {
	s, err := NewExtractor().Summarize("<html><body></body></html>", "https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Headings) != 0 || len(s.Images) != 0 {
		t.Errorf("summary = %+v, want empty slices", s)
	}
	if s.Headings == nil || s.Images == nil {
		t.Error("slices must be non-nil so JSON renders [] instead of null")
	}
}

func TestSummarize_BadSourceURLStillSummarizes(t *testing.T) {
	s, err := NewExtractor().Summarize(fixturePage, "://not a url")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.MetaTitle != "The Example Page" {
		t.Errorf("MetaTitle = %q", s.MetaTitle)
	}
	if s.Excerpt != "" {
		t.Errorf("Excerpt = %q, want empty when the source URL is unusable", s.Excerpt)
	}
}

func TestToMarkdown(t *testing.T) {
	md, err := NewExtractor().ToMarkdown(
		`<html><body><h1>Hello</h1><p>Visit <a href="/docs">the docs</a>.</p></body></html>`,
		"https://example.com",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(md, "Hello") {
		t.Errorf("markdown missing heading text: %q", md)
	}
	if !strings.Contains(md, "https://example.com/docs") {
		t.Errorf("markdown did not absolutize the relative link: %q", md)
	}
}

func TestToMarkdown_StripsScripts(t *testing.T) {
	md, err := NewExtractor().ToMarkdown(
		`<html><body><p>Visible</p><script>var hidden = 1;</script></body></html>`,
		"https://example.com",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(md, "hidden") {
		t.Errorf("markdown leaked script content: %q", md)
	}
}
