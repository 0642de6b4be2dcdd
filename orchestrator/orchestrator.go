// Package orchestrator drives the per-provider retry loop and the
// cross-provider fallback chain for every top-level operation.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/use-agent/relcis/config"
	"github.com/use-agent/relcis/models"
	"github.com/use-agent/relcis/provider"
	"github.com/use-agent/relcis/session"
	"github.com/use-agent/relcis/stealth"
)

// DefaultWebChain is the fallback order for web search: Yahoo, then Bing,
// then DuckDuckGo. This is the observed production order (upstream comments
// claimed Bing-first; the code said otherwise, and the code wins here).
var DefaultWebChain = []provider.Name{
	provider.YahooWeb,
	provider.BingWeb,
	provider.DuckDuckGoWeb,
}

// lastResortProvider gets the single extra tail attempt after the chain is
// exhausted with an eligible error.
const lastResortProvider = provider.YahooWeb

// webRunner executes one full provider attempt cycle (lease, navigate,
// retry loop, extract). Swappable for tests.
type webRunner func(ctx context.Context, name provider.Name, query string) ([]models.SearchResult, error)

// sleepFunc abstracts backoff sleeps so tests can observe delays.
type sleepFunc func(ctx context.Context, d time.Duration) error

// Orchestrator coordinates sessions, profiles, providers, and the retry/
// fallback policy. Safe for concurrent use.
type Orchestrator struct {
	sessions *session.Manager
	profiles *stealth.Generator
	cfg      config.SearchConfig
	blockAds bool

	run      webRunner
	imageRun imageRunner
	sleep    sleepFunc
}

// New creates an Orchestrator bound to the given session manager and
// profile generator.
func New(sessions *session.Manager, profiles *stealth.Generator, cfg config.SearchConfig, blockAds bool) *Orchestrator {
	o := &Orchestrator{
		sessions: sessions,
		profiles: profiles,
		cfg:      cfg,
		blockAds: blockAds,
		sleep:    sleepCtx,
	}
	o.run = o.runWebProvider
	o.imageRun = o.runImageProvider
	return o
}

// Search walks the web fallback chain and returns the first successful
// extraction. When the chain is exhausted with a block or load failure, one
// last-resort alternate attempt runs before giving up.
func (o *Orchestrator) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	var lastErr error

	for _, name := range DefaultWebChain {
		results, err := o.run(ctx, name, query)
		if err == nil {
			return results, nil
		}
		slog.Warn("web search provider failed",
			"provider", name, "query", query, "error", err)
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	// Last-resort alternate attempt: a deliberate policy inherited from
	// production behavior, keyed on the terminal error kind rather than
	// its message text.
	if ctx.Err() == nil && lastResortEligible(lastErr) {
		slog.Info("running last-resort alternate attempt", "provider", lastResortProvider)
		results, err := o.run(ctx, lastResortProvider, query)
		if err == nil {
			return results, nil
		}
		slog.Warn("last-resort attempt failed", "provider", lastResortProvider, "error", err)
		lastErr = err
	}

	return nil, models.NewSearchError(
		models.ErrCodeExhausted,
		"all search providers exhausted",
		lastErr,
	)
}

// lastResortEligible reports whether the terminal chain error warrants the
// extra tail attempt: persistent blocks and result-load failures do,
// structural failures (missing input field, bad markup) do not.
func lastResortEligible(err error) bool {
	if err == nil {
		return false
	}
	code := models.CodeOf(err)
	return code == models.ErrCodeBlocked || code == models.ErrCodeLoadFailure
}

// runWebProvider executes one provider's full cycle: fresh lease with a
// fresh stealth profile, human-like query submission, bounded classify/
// retry loop, then extraction from the final snapshot.
func (o *Orchestrator) runWebProvider(ctx context.Context, name provider.Name, query string) ([]models.SearchResult, error) {
	p, ok := provider.Lookup(name)
	if !ok || p.ExtractWeb == nil {
		return nil, models.NewSearchError(
			models.ErrCodeInternal,
			fmt.Sprintf("unknown web provider %q", name),
			nil,
		)
	}

	profile := o.profiles.Profile()
	profile.BlockAds = o.blockAds

	lease, err := o.sessions.Acquire(ctx, profile)
	if err != nil {
		return nil, err
	}
	defer lease.Release()
	page := lease.Page()

	if err := provider.SubmitQuery(ctx, page, p, query, o.cfg.InputTimeout); err != nil {
		return nil, err
	}

	snapshot, err := runRetryLoop(ctx, &livePage{o: o, page: page, p: p}, o.cfg.MaxRetries, o.sleep)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snapshot))
	if err != nil {
		return nil, models.NewSearchError(
			models.ErrCodeNavigation,
			"failed to parse results page",
			err,
		)
	}
	return p.ExtractWeb(doc, p.Origin, o.cfg.WebResultLimit), nil
}

// sleepCtx sleeps for d, honoring ctx cancellation.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// retryDelay returns a jittered backoff in [5s, 8s). The blocked and
// load-failure paths share the same bound.
func retryDelay() time.Duration {
	return 5*time.Second + time.Duration(rand.Int64N(int64(3*time.Second)))
}

// livePage adapts a rod page to the retry loop's pageOps seam.
type livePage struct {
	o    *Orchestrator
	page *rod.Page
	p    *provider.Provider
}

func (l *livePage) Await(ctx context.Context) (provider.Classification, string, error) {
	return provider.AwaitOutcome(ctx, l.page, l.p, l.o.cfg.ClassifyTimeout)
}

func (l *livePage) Reload(ctx context.Context) error {
	pt := l.page.Context(ctx)
	if err := pt.Reload(); err != nil {
		return models.NewSearchError(models.ErrCodeNavigation, "page reload failed", err)
	}
	if err := pt.WaitLoad(); err != nil {
		slog.Debug("reload wait did not settle", "provider", l.p.Name, "error", err)
	}
	return nil
}

func (l *livePage) Snapshot(retries int) {
	writeDebugSnapshot(l.page, l.o.cfg.DebugDir, string(l.p.Name), retries)
}

// capturePNG takes a full-page screenshot.
func capturePNG(page *rod.Page) ([]byte, error) {
	return page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}
