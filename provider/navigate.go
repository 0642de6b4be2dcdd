package provider

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"

	"github.com/use-agent/relcis/models"
)

// SubmitQuery drives the human-like input sequence: navigate to the entry
// page, pause, type the query character by character with jittered delays,
// and confirm with Enter, waiting for the result navigation to settle.
func SubmitQuery(ctx context.Context, page *rod.Page, p *Provider, query string, inputTimeout time.Duration) error {
	pt := page.Context(ctx)

	if err := pt.Navigate(p.EntryURL); err != nil {
		return models.NewSearchError(
			models.ErrCodeNavigation,
			fmt.Sprintf("navigation to %s failed", p.Name),
			err,
		)
	}
	if err := pt.WaitLoad(); err != nil {
		return models.NewSearchError(
			models.ErrCodeNavigation,
			fmt.Sprintf("entry page for %s did not load", p.Name),
			err,
		)
	}

	if err := randomPause(ctx, time.Second, 3*time.Second); err != nil {
		return models.NewSearchError(models.ErrCodeNavigation, "pre-input pause canceled", err)
	}

	el, err := pt.Timeout(inputTimeout).Element(p.InputSelector)
	if err != nil {
		return models.NewSearchError(
			models.ErrCodeNavigation,
			fmt.Sprintf("search input not found on %s", p.Name),
			err,
		)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		// Some inputs reject synthetic clicks; focus is enough to type.
		if ferr := el.Focus(); ferr != nil {
			return models.NewSearchError(
				models.ErrCodeNavigation,
				fmt.Sprintf("search input on %s not interactable", p.Name),
				ferr,
			)
		}
	}

	for _, r := range query {
		if err := pt.InsertText(string(r)); err != nil {
			return models.NewSearchError(
				models.ErrCodeNavigation,
				fmt.Sprintf("typing into %s failed", p.Name),
				err,
			)
		}
		if err := randomPause(ctx, 100*time.Millisecond, 150*time.Millisecond); err != nil {
			return models.NewSearchError(models.ErrCodeNavigation, "typing pause canceled", err)
		}
	}

	wait := pt.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := pt.Keyboard.Press(input.Enter); err != nil {
		return models.NewSearchError(
			models.ErrCodeNavigation,
			fmt.Sprintf("query submission on %s failed", p.Name),
			err,
		)
	}
	wait()

	if p.PostSubmit != nil {
		return p.PostSubmit(ctx, page, query)
	}
	return nil
}

// Humanize scrolls through part of the page and wanders the mouse to mimic
// a reader. Best-effort; failures are ignored.
func Humanize(ctx context.Context, page *rod.Page) {
	pt := page.Context(ctx)

	_, _ = pt.Eval(`() => {
		const totalHeight = document.body.scrollHeight;
		let scrolled = 0;
		const interval = setInterval(() => {
			const step = Math.random() * 100 + 50;
			window.scrollBy(0, step);
			scrolled += step;
			if (scrolled > totalHeight * 0.7) clearInterval(interval);
		}, Math.random() * 300 + 200);
	}`)

	for i := 0; i < 3; i++ {
		_ = pt.Mouse.MoveTo(proto.NewPoint(rand.Float64()*300, rand.Float64()*300))
		if randomPause(ctx, 100*time.Millisecond, 300*time.Millisecond) != nil {
			return
		}
	}
}

// randomPause sleeps a uniform random duration in [min, max], honoring ctx.
func randomPause(ctx context.Context, min, max time.Duration) error {
	d := min + time.Duration(rand.Int64N(int64(max-min)+1))
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
