package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-rod/rod"

	"github.com/use-agent/relcis/models"
)

// Capture navigates to url and returns a full-page PNG screenshot plus the
// serialized DOM. Ad blocking stays off so the shot reflects the real page.
func (o *Orchestrator) Capture(ctx context.Context, url string) ([]byte, string, error) {
	lease, err := o.sessions.Acquire(ctx, o.profiles.Profile())
	if err != nil {
		return nil, "", err
	}
	defer lease.Release()

	page, err := o.openPage(ctx, lease.Page(), url)
	if err != nil {
		return nil, "", err
	}

	png, err := capturePNG(page)
	if err != nil {
		return nil, "", models.NewSearchError(
			models.ErrCodeNavigation,
			"full-page screenshot failed",
			err,
		)
	}
	htmlStr, err := page.HTML()
	if err != nil {
		return nil, "", models.NewSearchError(
			models.ErrCodeNavigation,
			"failed to serialize page",
			err,
		)
	}
	return png, htmlStr, nil
}

// Read navigates to url and returns the serialized DOM.
func (o *Orchestrator) Read(ctx context.Context, url string) (string, error) {
	lease, err := o.sessions.Acquire(ctx, o.profiles.Profile())
	if err != nil {
		return "", err
	}
	defer lease.Release()

	page, err := o.openPage(ctx, lease.Page(), url)
	if err != nil {
		return "", err
	}

	htmlStr, err := page.HTML()
	if err != nil {
		return "", models.NewSearchError(
			models.ErrCodeNavigation,
			"failed to serialize page",
			err,
		)
	}
	return htmlStr, nil
}

// openPage navigates and waits for the page to settle enough that JS-driven
// layouts have rendered. Settle waits are best-effort.
func (o *Orchestrator) openPage(ctx context.Context, page *rod.Page, url string) (*rod.Page, error) {
	pt := page.Context(ctx)

	if err := pt.Navigate(url); err != nil {
		return nil, models.NewSearchError(
			models.ErrCodeNavigation,
			"navigation failed",
			err,
		)
	}
	if err := pt.WaitLoad(); err != nil {
		return nil, models.NewSearchError(
			models.ErrCodeNavigation,
			"page did not finish loading",
			err,
		)
	}
	if err := pt.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("dom did not stabilize, capturing anyway", "url", url, "error", err)
	}
	return pt, nil
}
