package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/deepfetch/models"
	"github.com/ysmood/gson"
)

// browserResult is the raw outcome of a browser-rendered fetch, before
// cleaning.
type browserResult struct {
	rawHTML    string
	title      string
	statusCode int
	finalURL   string
}

// fetchBrowser renders the URL in a pooled headless page and returns
// the post-JS HTML.
//
// Lifecycle:
//
//  1. Acquire page        - borrow a tab from the pool (or create one)
//  2. DEFER: cleanup      - about:blank + return to pool (leak prevention)
//  3. Stealth injection   - mask navigator.webdriver etc. (before navigation!)
//  4. Session material    - extra headers and cookies
//  5. Hijack mount        - block images/CSS/fonts/media (before navigation!)
//  6. Context binding     - propagate the deadline to all Rod operations
//  7. Navigate + wait     - DOM stable
//  8. Extract             - page.HTML() + title + final URL
//
// Steps 3-5 must happen before navigation: stealth JS and resource
// blocking only take effect for navigations installed ahead of them.
// Step 2's about:blank uses the ORIGINAL page reference, so cleanup
// succeeds even after the request context has expired.
func (s *Scraper) fetchBrowser(ctx context.Context, req *models.FetchRequest) (*browserResult, error) {
	s.activePages.Add(1)
	defer s.activePages.Add(-1)

	page, acquireErr := s.pagePool.Get(func() (*rod.Page, error) {
		return s.browser.Page(proto.TargetCreateTarget{})
	})
	if acquireErr != nil {
		return nil, models.NewExtractError(
			models.ErrCodeBrowserCrash,
			"failed to acquire page from pool",
			acquireErr,
		)
	}

	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
		}
		s.pagePool.Put(page)
	}()

	s.applySession(page, req.URL, req.Headers, req.Cookies, req.AuthToken, req.Stealth)

	router := setupHijack(page, s.fetchCfg.BlockedResourceTypes, req.BlockAds)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	p := page.Context(ctx)

	if navErr := p.Navigate(req.URL); navErr != nil {
		return nil, categorizeError(navErr, "navigation to target URL failed")
	}

	if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"error", stableErr,
		)
	}

	// Status code via the navigation performance entry. CDP network
	// event listeners conflict with the Fetch domain used by the hijack
	// router on newer Chromium, so this stays JS-side.
	statusCode := 0
	if res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch(e) {}
		return 0;
	}`); err == nil {
		statusCode = res.Value.Int()
	}

	if req.RemoveOverlays {
		removeOverlays(p)
	}

	rawHTML, htmlErr := p.HTML()
	if htmlErr != nil {
		return nil, categorizeError(htmlErr, "failed to extract page HTML")
	}

	title := evalStringOrEmpty(p, `() => document.title`)
	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	return &browserResult{
		rawHTML:    rawHTML,
		title:      title,
		statusCode: statusCode,
		finalURL:   finalURL,
	}, nil
}

// applySession installs stealth JS, extra headers (including a Google
// search Referer when the caller did not set one), bearer auth, and
// cookies on the page. All of it is best-effort.
func (s *Scraper) applySession(page *rod.Page, targetURL string, headers map[string]string, cookieStr string, authToken string, useStealth bool) {
	if useStealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}

	host := ""
	if u, parseErr := url.Parse(targetURL); parseErr == nil {
		host = u.Hostname()
	}

	extraHeaders := make(map[string]string, len(headers)+2)
	if _, hasReferer := headers["Referer"]; !hasReferer && host != "" {
		extraHeaders["Referer"] = "https://www.google.com/search?q=" + url.QueryEscape(host)
	}
	for k, v := range headers {
		extraHeaders[k] = v
	}
	if authToken != "" {
		extraHeaders["Authorization"] = "Bearer " + authToken
	}
	if len(extraHeaders) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(extraHeaders),
		}.Call(page)
	}

	for _, cookie := range ParseCookieString(cookieStr, host) {
		_, _ = proto.NetworkSetCookie{
			Name:   cookie.Name,
			Value:  cookie.Value,
			Domain: cookie.Domain,
			Path:   cookie.Path,
		}.Call(page)
	}
}

// attachCDP connects to an externally running browser over CDP and
// returns a page for the target URL. An already-open tab whose URL
// matches is reused so the caller sees whatever state the user's own
// session has built up (logins, loaded conversations); otherwise a
// fresh tab is created and navigated.
//
// The returned cleanup disconnects the WebSocket without killing the
// user's browser, and only closes the tab if we created it.
func attachCDP(ctx context.Context, cdpURL string, targetURL string) (*rod.Page, func(), error) {
	browser := rod.New().Context(ctx).ControlURL(cdpURL)
	if err := browser.Connect(); err != nil {
		return nil, nil, models.NewExtractError(
			models.ErrCodeBrowserCrash,
			"failed to connect to CDP URL",
			err,
		)
	}

	pages, err := browser.Pages()
	if err == nil {
		for _, page := range pages {
			info, infoErr := page.Info()
			if infoErr != nil {
				continue
			}
			if matchesTarget(info.URL, targetURL) {
				cleanup := func() { browser.Close() }
				return page, cleanup, nil
			}
		}
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		browser.Close()
		return nil, nil, models.NewExtractError(
			models.ErrCodeBrowserCrash,
			"failed to create page on CDP browser",
			err,
		)
	}
	if navErr := page.Context(ctx).Navigate(targetURL); navErr != nil {
		_ = page.Close()
		browser.Close()
		return nil, nil, categorizeError(navErr, "navigation to target URL failed")
	}

	cleanup := func() {
		_ = page.Close()
		browser.Close()
	}
	return page, cleanup, nil
}

// matchesTarget compares an open tab's URL against the requested one,
// ignoring scheme and trailing slashes.
func matchesTarget(tabURL, targetURL string) bool {
	norm := func(raw string) string {
		u, err := url.Parse(raw)
		if err != nil {
			return raw
		}
		return u.Host + "/" + trimSlash(u.Path)
	}
	return norm(tabURL) == norm(targetURL)
}

func trimSlash(p string) string {
	for len(p) > 0 && (p[0] == '/' || p[len(p)-1] == '/') {
		if p[0] == '/' {
			p = p[1:]
			continue
		}
		p = p[:len(p)-1]
	}
	return p
}

// evalStringOrEmpty evaluates a JS expression and returns the string
// result, swallowing errors.
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to proto.NetworkHeaders
// (map[string]gson.JSON) as required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// removeOverlays drops fixed and sticky positioned elements with a high
// z-index (cookie banners, modals) and common consent containers.
func removeOverlays(p *rod.Page) {
	const js = `() => {
		const els = document.querySelectorAll('*');
		for (const el of els) {
			const style = window.getComputedStyle(el);
			const pos = style.position;
			if (pos === 'fixed' || pos === 'sticky') {
				const z = parseInt(style.zIndex, 10);
				if (z >= 900 || style.zIndex === 'auto') {
					el.remove();
				}
			}
		}
		const selectors = [
			'[class*="cookie"]', '[class*="consent"]', '[class*="overlay"]',
			'[id*="cookie"]', '[id*="consent"]', '[id*="overlay"]',
			'[class*="popup"]', '[id*="popup"]',
			'[class*="gdpr"]', '[id*="gdpr"]',
		];
		for (const sel of selectors) {
			document.querySelectorAll(sel).forEach(el => {
				const style = window.getComputedStyle(el);
				if (style.position === 'fixed' || style.position === 'sticky' || style.position === 'absolute') {
					el.remove();
				}
			});
		}
		document.documentElement.style.overflow = '';
		document.body.style.overflow = '';
	}`
	_, _ = p.Eval(js)
}

// categorizeError wraps raw errors into typed ExtractErrors so the API
// layer can map them to HTTP status codes.
func categorizeError(err error, msg string) *models.ExtractError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewExtractError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewExtractError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewExtractError(models.ErrCodeNavigation, msg, err)
	}
}
