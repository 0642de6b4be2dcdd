// Package stealth produces randomized but internally consistent browsing
// identities (user agent, viewport, locale, timezone, cookies) so that
// consecutive leases do not share an obvious fingerprint.
package stealth

import (
	"crypto/rand"
	"math/big"
)

// userAgents is a small curated pool of current desktop and mobile UAs.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4_1) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:124.0) Gecko/20100101 Firefox/124.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1",
}

// Viewport is a browser window size in CSS pixels.
type Viewport struct {
	Width  int
	Height int
}

var viewports = []Viewport{
	{1366, 768},
	{1920, 1080},
	{1440, 900},
	{1536, 864},
	{1280, 720},
}

// Profile is the identity applied to one lease. Cookies are seeded from the
// shared jar on image-search leases only and written back after a successful
// run; every other lease starts cookie-free.
type Profile struct {
	UserAgent         string
	Viewport          Viewport
	DeviceScaleFactor float64
	Locale            string
	TimezoneID        string
	Cookies           []CookieRecord

	// BlockAds enables the ad/tracker request hijack on the lease.
	BlockAds bool
}

// Generator builds profiles and owns the shared cookie jar.
type Generator struct {
	jar *CookieJar
}

// NewGenerator creates a Generator backed by the cookie jar at jarPath.
func NewGenerator(jarPath string) *Generator {
	return &Generator{jar: NewCookieJar(jarPath)}
}

// Jar exposes the shared cookie jar for post-operation write-back.
func (g *Generator) Jar() *CookieJar {
	return g.jar
}

// Profile picks identity attributes uniformly at random from the curated
// pools. The cookie set starts empty.
func (g *Generator) Profile() *Profile {
	scale := 1.0
	if pick(2) == 1 {
		scale = 2.0
	}
	return &Profile{
		UserAgent:         userAgents[pick(len(userAgents))],
		Viewport:          viewports[pick(len(viewports))],
		DeviceScaleFactor: scale,
		Locale:            "en-US",
		TimezoneID:        "America/Los_Angeles",
	}
}

// ProfileWithCookies is Profile plus the shared jar contents, for the image
// path where accumulated cookies carry over between runs. Loading is
// best-effort: a missing or corrupt jar yields an empty cookie set, never an
// error.
func (g *Generator) ProfileWithCookies() *Profile {
	p := g.Profile()
	p.Cookies = g.jar.Load()
	return p
}

// pick returns a uniform random index in [0, n) using crypto/rand.
func pick(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
