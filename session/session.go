// Package session owns the process-wide browser engine and hands out
// short-lived isolated browsing contexts ("leases") to callers.
package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	rodstealth "github.com/go-rod/stealth"
	"github.com/ysmood/gson"
	"golang.org/x/sync/semaphore"

	"github.com/use-agent/relcis/config"
	"github.com/use-agent/relcis/models"
	"github.com/use-agent/relcis/stealth"
)

// Manager launches the shared browser process lazily, at most once, and
// issues isolated leases. It is safe for concurrent use.
//
// A failed launch is remembered: every subsequent Acquire fails with
// SESSION_INIT_FAILED until Reset is called. The manager never retries the
// launch on its own.
type Manager struct {
	cfg config.BrowserConfig

	mu        sync.Mutex
	browser   *rod.Browser
	launchErr error

	sem    *semaphore.Weighted
	active atomic.Int32
}

// NewManager creates a Manager. The browser is not launched until the first
// lease is requested.
func NewManager(cfg config.BrowserConfig) *Manager {
	if cfg.MaxLeases <= 0 {
		cfg.MaxLeases = 1
	}
	return &Manager{
		cfg: cfg,
		sem: semaphore.NewWeighted(int64(cfg.MaxLeases)),
	}
}

// browserHandle returns the shared browser, launching it on first use.
func (m *Manager) browserHandle() (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		return m.browser, nil
	}
	if m.launchErr != nil {
		return nil, models.NewSearchError(
			models.ErrCodeSessionInit,
			"browser engine unavailable",
			m.launchErr,
		)
	}

	l := launcher.New().
		Headless(m.cfg.Headless).
		NoSandbox(m.cfg.NoSandbox)

	if m.cfg.BrowserBin != "" {
		l = l.Bin(m.cfg.BrowserBin)
	}
	if m.cfg.Proxy != "" {
		l = l.Proxy(m.cfg.Proxy)
	}

	// Hardened flag set for constrained server environments.
	l.Set(flags.Flag("disable-setuid-sandbox"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-accelerated-2d-canvas"))
	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("lang"), "en-US,en")
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		m.launchErr = err
		return nil, models.NewSearchError(
			models.ErrCodeSessionInit,
			"failed to launch browser",
			err,
		)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		m.launchErr = err
		return nil, models.NewSearchError(
			models.ErrCodeSessionInit,
			"failed to connect to browser",
			err,
		)
	}

	slog.Info("browser launched", "controlURL", controlURL)
	m.browser = browser
	return browser, nil
}

// Acquire issues a lease configured with the given profile. It blocks while
// the concurrent-lease budget is exhausted (admission queue, not reject).
// The caller must Release the lease on every exit path.
func (m *Manager) Acquire(ctx context.Context, profile *stealth.Profile) (*Lease, error) {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return nil, models.NewSearchError(
			models.ErrCodeInternal,
			"lease admission wait canceled",
			err,
		)
	}

	lease, err := m.acquire(ctx, profile)
	if err != nil {
		m.sem.Release(1)
		return nil, err
	}
	m.active.Add(1)
	return lease, nil
}

func (m *Manager) acquire(ctx context.Context, profile *stealth.Profile) (*Lease, error) {
	browser, err := m.browserHandle()
	if err != nil {
		return nil, err
	}

	incognito, err := browser.Incognito()
	if err != nil {
		return nil, models.NewSearchError(
			models.ErrCodeSessionInit,
			"failed to create isolated browsing context",
			err,
		)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		disposeContext(browser, incognito.BrowserContextID)
		return nil, models.NewSearchError(
			models.ErrCodeSessionInit,
			"failed to open page in browsing context",
			err,
		)
	}

	lease := &Lease{
		mgr:   m,
		root:  browser,
		ctxID: incognito.BrowserContextID,
		page:  page,
	}

	if err := lease.applyProfile(ctx, incognito, profile); err != nil {
		lease.close()
		return nil, err
	}

	if profile != nil && profile.BlockAds {
		lease.router = mountAdBlock(page)
	}

	return lease, nil
}

// Stats returns a snapshot of current lease utilisation.
func (m *Manager) Stats() models.LeaseStats {
	return models.LeaseStats{
		MaxLeases:    m.cfg.MaxLeases,
		ActiveLeases: int(m.active.Load()),
	}
}

// Reset tears down the shared browser (if any) and clears a remembered
// launch failure so the next Acquire attempts a fresh launch.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			slog.Warn("session reset: browser close failed", "error", err)
		}
		m.browser = nil
	}
	m.launchErr = nil
}

// Close kills the browser process. Call on graceful shutdown to prevent
// zombie Chrome processes.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser == nil {
		return
	}
	slog.Info("session manager shutting down: closing browser")
	m.browser.MustClose()
	m.browser = nil
}

// Lease is one isolated browsing context + page. It is never reused across
// operations and must be released exactly once.
type Lease struct {
	mgr     *Manager
	root    *rod.Browser
	ctxID   proto.BrowserBrowserContextID
	page    *rod.Page
	router  *rod.HijackRouter
	release sync.Once
}

// Page returns the lease's page.
func (l *Lease) Page() *rod.Page {
	return l.page
}

// Cookies reports the cookies accumulated in the lease's context, for
// write-back into the shared jar.
func (l *Lease) Cookies() []stealth.CookieRecord {
	cookies, err := l.page.Cookies(nil)
	if err != nil {
		slog.Warn("lease: cookie read failed", "error", err)
		return nil
	}
	records := make([]stealth.CookieRecord, 0, len(cookies))
	for _, c := range cookies {
		records = append(records, stealth.CookieRecord{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  float64(c.Expires),
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		})
	}
	return records
}

// Release destroys the browsing context and returns the admission slot.
// Safe to call multiple times; only the first call has effect.
func (l *Lease) Release() {
	l.release.Do(func() {
		l.close()
		l.mgr.active.Add(-1)
		l.mgr.sem.Release(1)
	})
}

func (l *Lease) close() {
	if l.router != nil {
		_ = l.router.Stop()
	}
	if err := l.page.Close(); err != nil {
		slog.Warn("lease: page close failed", "error", err)
	}
	disposeContext(l.root, l.ctxID)
}

// applyProfile configures identity attributes and seeds cookies before any
// navigation. Stealth JS must be installed here: it only takes effect for
// navigations that happen after injection.
func (l *Lease) applyProfile(ctx context.Context, incognito *rod.Browser, profile *stealth.Profile) error {
	if profile == nil {
		return nil
	}
	page := l.page.Context(ctx)

	if _, err := page.EvalOnNewDocument(rodstealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      profile.UserAgent,
		AcceptLanguage: profile.Locale,
	}); err != nil {
		return models.NewSearchError(models.ErrCodeSessionInit, "failed to set user agent", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             profile.Viewport.Width,
		Height:            profile.Viewport.Height,
		DeviceScaleFactor: profile.DeviceScaleFactor,
		Mobile:            false,
	}); err != nil {
		return models.NewSearchError(models.ErrCodeSessionInit, "failed to set viewport", err)
	}

	// Timezone/locale overrides are best-effort; some builds reject them.
	if err := (proto.EmulationSetTimezoneOverride{TimezoneID: profile.TimezoneID}).Call(page); err != nil {
		slog.Debug("timezone override failed", "error", err)
	}
	if err := (proto.EmulationSetLocaleOverride{Locale: profile.Locale}).Call(page); err != nil {
		slog.Debug("locale override failed", "error", err)
	}

	_ = proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeadersMap(map[string]string{
			"Accept-Language": "en-US,en;q=0.9",
		}),
	}.Call(page)

	if len(profile.Cookies) > 0 {
		params := make([]*proto.NetworkCookieParam, 0, len(profile.Cookies))
		for _, c := range profile.Cookies {
			params = append(params, &proto.NetworkCookieParam{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   c.Domain,
				Path:     c.Path,
				Expires:  proto.TimeSinceEpoch(c.Expires),
				HTTPOnly: c.HTTPOnly,
				Secure:   c.Secure,
			})
		}
		if err := incognito.SetCookies(params); err != nil {
			slog.Warn("lease: cookie seed failed", "error", err)
		}
	}

	return nil
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// disposeContext tears down an incognito browser context, closing any
// remaining targets it owns.
func disposeContext(root *rod.Browser, id proto.BrowserBrowserContextID) {
	if id == "" {
		return
	}
	if err := (proto.TargetDisposeBrowserContext{BrowserContextID: id}).Call(root); err != nil {
		slog.Warn("lease: browsing context dispose failed", "error", err)
	}
}
