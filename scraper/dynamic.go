package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/deepfetch/dynamic"
	"github.com/use-agent/deepfetch/models"
)

// DynamicResult pairs the extraction report with the page's final URL.
type DynamicResult struct {
	Report   *dynamic.Report
	FinalURL string
}

// DoDynamic runs the stabilize-and-extract pipeline against a live
// page: navigate, nudge the page until its content stops growing, run
// every extraction strategy, merge.
//
// With CDPURL set the pipeline attaches to the user's own browser and
// reuses an already-open tab when one shows the target URL; otherwise a
// pooled headless page is used.
func (s *Scraper) DoDynamic(ctx context.Context, req *models.DynamicRequest) (*DynamicResult, error) {
	overall := time.Duration(req.TimeoutMs) * time.Millisecond
	if overall > s.dynamicCfg.MaxTimeout {
		overall = s.dynamicCfg.MaxTimeout
	}

	// The pipeline enforces its own overall deadline; the outer context
	// here bounds navigation plus the pipeline plus salvage slack.
	ctx, cancel := context.WithTimeout(ctx, overall+s.dynamicCfg.SalvageTimeout+10*time.Second)
	defer cancel()

	var page *rod.Page
	if req.CDPURL != "" {
		attached, cleanup, err := attachCDP(ctx, req.CDPURL, req.URL)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		page = attached
	} else {
		pooled, release, err := s.acquireDynamicPage(ctx, req)
		if err != nil {
			return nil, err
		}
		defer release()
		page = pooled
	}

	opts := dynamic.Options{
		InitialWait:     time.Duration(req.WaitTimeMs) * time.Millisecond,
		ManualWait:      time.Duration(req.ManualWaitMs) * time.Millisecond,
		MaxAttempts:     req.MaxScrollAttempts,
		SettleDelay:     s.dynamicCfg.SettleDelay,
		StableWindow:    s.dynamicCfg.StableWindow,
		ConfirmWindow:   s.dynamicCfg.ConfirmWindow,
		StrategyTimeout: s.dynamicCfg.StrategyTimeout,
		OverallTimeout:  overall,
		SalvageTimeout:  s.dynamicCfg.SalvageTimeout,
	}
	if req.Merge != nil && !*req.Merge {
		opts.SelectSingle = true
	}

	report, err := dynamic.Extract(ctx, dynamic.NewPageDriver(page), opts)
	if err != nil {
		return nil, err
	}

	finalURL := evalStringOrEmpty(page, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	return &DynamicResult{Report: report, FinalURL: finalURL}, nil
}

// acquireDynamicPage borrows a pooled page, applies session material,
// and navigates it to the target. The release func returns the page to
// the pool via about:blank regardless of the request context's state.
func (s *Scraper) acquireDynamicPage(ctx context.Context, req *models.DynamicRequest) (*rod.Page, func(), error) {
	s.activePages.Add(1)

	page, acquireErr := s.pagePool.Get(func() (*rod.Page, error) {
		return s.browser.Page(proto.TargetCreateTarget{})
	})
	if acquireErr != nil {
		s.activePages.Add(-1)
		return nil, nil, models.NewExtractError(
			models.ErrCodeBrowserCrash,
			"failed to acquire page from pool",
			acquireErr,
		)
	}

	release := func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
		}
		s.pagePool.Put(page)
		s.activePages.Add(-1)
	}

	s.applySession(page, req.URL, nil, req.Cookies, "", req.Stealth)

	if navErr := page.Context(ctx).Navigate(req.URL); navErr != nil {
		release()
		return nil, nil, categorizeError(navErr, "navigation to target URL failed")
	}

	return page, release, nil
}
