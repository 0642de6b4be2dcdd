package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-rod/rod"

	"github.com/use-agent/relcis/models"
	"github.com/use-agent/relcis/provider"
)

// pageOps abstracts the live-page operations the retry loop needs.
type pageOps interface {
	Await(ctx context.Context) (provider.Classification, string, error)
	Reload(ctx context.Context) error
	Snapshot(retries int)
}

// runRetryLoop performs up to maxRetries classification attempts against
// one results page, reloading between attempts with a jittered backoff.
// It returns the HTML snapshot on ResultsPresent. On exhaustion it dumps a
// debug snapshot and returns BLOCK_DETECTED when the final verdict was
// Blocked, RESULTS_LOAD_FAILED otherwise.
func runRetryLoop(ctx context.Context, ops pageOps, maxRetries int, sleep sleepFunc) (string, error) {
	lastClass := provider.Indeterminate

	for attempt := 1; attempt <= maxRetries; attempt++ {
		class, snapshot, err := ops.Await(ctx)
		if err != nil {
			return "", err
		}

		switch class {
		case provider.ResultsPresent:
			return snapshot, nil
		case provider.Blocked:
			slog.Warn("block indicator detected, will retry",
				"attempt", attempt, "max", maxRetries)
		default:
			slog.Warn("results did not appear within wait budget",
				"attempt", attempt, "max", maxRetries)
		}
		lastClass = class

		if attempt == maxRetries {
			break
		}
		if err := sleep(ctx, retryDelay()); err != nil {
			return "", models.NewSearchError(
				models.ErrCodeNavigation, "retry backoff canceled", err)
		}
		if err := ops.Reload(ctx); err != nil {
			return "", err
		}
	}

	ops.Snapshot(maxRetries)

	if lastClass == provider.Blocked {
		return "", models.NewSearchError(
			models.ErrCodeBlocked,
			"block indicator persisted after retries",
			nil,
		)
	}
	return "", models.NewSearchError(
		models.ErrCodeLoadFailure,
		"results did not load after retries",
		nil,
	)
}

// writeDebugSnapshot dumps a full-page screenshot and the serialized HTML
// for post-mortem inspection. Failures are logged and swallowed; debugging
// artifacts never fail the request.
func writeDebugSnapshot(page *rod.Page, dir, tag string, retries int) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Warn("debug snapshot dir creation failed", "dir", dir, "error", err)
		return
	}

	base := filepath.Join(dir, fmt.Sprintf("debug_%s_retry_%d", tag, retries))

	if png, err := capturePNG(page); err != nil {
		slog.Warn("debug screenshot failed", "provider", tag, "error", err)
	} else if err := os.WriteFile(base+".png", png, 0o644); err != nil {
		slog.Warn("debug screenshot write failed", "path", base+".png", "error", err)
	}

	if htmlStr, err := page.HTML(); err != nil {
		slog.Warn("debug html capture failed", "provider", tag, "error", err)
	} else if err := os.WriteFile(base+".html", []byte(htmlStr), 0o644); err != nil {
		slog.Warn("debug html write failed", "path", base+".html", "error", err)
	}
}
