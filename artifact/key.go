// Package artifact persists screenshots, page HTML, and mirrored images to
// S3-compatible object storage and exposes them through CDN URLs.
package artifact

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// Storage prefixes. The names are part of the public URL layout and must
// stay stable across deployments.
const (
	PrefixScreenshots = "screenshots"
	PrefixHTML        = "searchedHTML"
	PrefixImages      = "searchedImages"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// sanitizeContext makes a query or URL safe for use inside an object key by
// collapsing whitespace runs into single hyphens.
func sanitizeContext(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), "-")
}

// idSpan is the size of the 16-digit id range [1e15, 1e16).
var idSpan = big.NewInt(9_000_000_000_000_000)

// randomID returns a 16-digit decimal identifier. Sixteen digits keeps
// collisions implausible without coordinating state between instances.
func randomID() int64 {
	v, err := rand.Int(rand.Reader, idSpan)
	if err != nil {
		// crypto/rand never fails on supported platforms.
		panic(err)
	}
	return v.Int64() + 1_000_000_000_000_000
}

// objectKey builds "{prefix}/{sanitized-context}-{16-digit-id}.{ext}".
func objectKey(prefix, context, ext string) string {
	return fmt.Sprintf("%s/%s-%d.%s", prefix, sanitizeContext(context), randomID(), ext)
}

// extFromURL pulls a file extension out of a URL path, defaulting to "jpg"
// when the path carries none.
func extFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "jpg"
	}
	ext := strings.TrimPrefix(path.Ext(u.Path), ".")
	if ext == "" || len(ext) > 5 {
		return "jpg"
	}
	return strings.ToLower(ext)
}
