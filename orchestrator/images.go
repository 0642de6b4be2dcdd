package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/relcis/models"
	"github.com/use-agent/relcis/provider"
)

// imageRunner executes one image-engine attempt cycle. Swappable for tests.
type imageRunner func(ctx context.Context, p *provider.Provider, query string) ([]models.ImageResult, error)

// SearchImages runs an image search against a single engine. There is no
// cross-engine fallback: image engines fail independently. Failed attempts
// are retried with exponential jittered backoff.
func (o *Orchestrator) SearchImages(ctx context.Context, query string, engine provider.Name, count int) ([]models.ImageResult, error) {
	p, ok := provider.Lookup(engine)
	if !ok || p.ExtractImages == nil {
		return nil, models.NewSearchError(
			models.ErrCodeInvalidInput,
			fmt.Sprintf("unsupported image engine %q", engine),
			nil,
		)
	}

	var lastErr error
	for attempt := 1; attempt <= o.cfg.ImageRetries; attempt++ {
		results, err := o.imageRun(ctx, p, query)
		if err == nil {
			if count > 0 && len(results) > count {
				results = results[:count]
			}
			return results, nil
		}
		slog.Warn("image search attempt failed",
			"engine", engine, "attempt", attempt, "max", o.cfg.ImageRetries, "error", err)
		lastErr = err

		if attempt == o.cfg.ImageRetries || ctx.Err() != nil {
			break
		}
		if serr := o.sleep(ctx, imageRetryDelay(o.cfg.ImageRetryBase, attempt)); serr != nil {
			break
		}
	}
	return nil, lastErr
}

// imageRetryDelay is exponential backoff with multiplicative jitter:
// base * 2^(attempt-1) * uniform[0.5, 1.0).
func imageRetryDelay(base time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	return time.Duration(float64(d) * (0.5 + rand.Float64()/2))
}

// runImageProvider executes one image-engine cycle. Image pages keep ads
// unblocked so thumbnail CDNs are not caught by the hijack. Cookies
// accumulated during a successful run are written back to the shared jar.
func (o *Orchestrator) runImageProvider(ctx context.Context, p *provider.Provider, query string) ([]models.ImageResult, error) {
	profile := o.profiles.ProfileWithCookies()

	lease, err := o.sessions.Acquire(ctx, profile)
	if err != nil {
		return nil, err
	}
	defer lease.Release()
	page := lease.Page()

	if err := provider.SubmitQuery(ctx, page, p, query, o.cfg.InputTimeout); err != nil {
		return nil, err
	}

	class, snapshot, err := provider.AwaitOutcome(ctx, page, p, o.cfg.ClassifyTimeout)
	if err != nil {
		return nil, err
	}
	switch class {
	case provider.Blocked:
		writeDebugSnapshot(page, o.cfg.DebugDir, string(p.Name), 0)
		return nil, models.NewSearchError(
			models.ErrCodeBlocked,
			fmt.Sprintf("block indicator on %s", p.Name),
			nil,
		)
	case provider.Indeterminate:
		writeDebugSnapshot(page, o.cfg.DebugDir, string(p.Name), 0)
		return nil, models.NewSearchError(
			models.ErrCodeLoadFailure,
			fmt.Sprintf("image results did not load on %s", p.Name),
			nil,
		)
	}

	// Scrolling makes lazy-loaded thumbnails materialize, so re-snapshot
	// after the humanized pass.
	provider.Humanize(ctx, page)
	if refreshed, herr := page.Context(ctx).HTML(); herr == nil {
		snapshot = refreshed
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snapshot))
	if err != nil {
		return nil, models.NewSearchError(
			models.ErrCodeNavigation,
			"failed to parse image results page",
			err,
		)
	}
	results := p.ExtractImages(doc, p.Origin)

	o.profiles.Jar().Save(lease.Cookies())

	return results, nil
}
