// Package scraper owns the browser lifecycle and every way a page can
// be fetched: plain HTTP with a Chrome TLS fingerprint, a pooled
// headless browser, or an externally running browser attached over CDP.
package scraper

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/use-agent/deepfetch/config"
	"github.com/use-agent/deepfetch/engine"
	"github.com/use-agent/deepfetch/models"
)

// Scraper manages the global browser lifecycle and the page pool.
// It is safe for concurrent use; individual pages are not.
type Scraper struct {
	browser     *rod.Browser
	pagePool    rod.Pool[rod.Page]
	browserCfg  config.BrowserConfig
	fetchCfg    config.FetchConfig
	dynamicCfg  config.DynamicConfig
	httpFetcher *httpFetcher
	dispatcher  *engine.Dispatcher
	memory      *engine.DomainMemory
	activePages atomic.Int32
	startTime   time.Time
}

// NewScraper launches a headless browser and initialises the reusable
// page pool.
func NewScraper(browserCfg config.BrowserConfig, fetchCfg config.FetchConfig, dynamicCfg config.DynamicConfig) (*Scraper, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.DefaultProxy != "" {
		l = l.Proxy(browserCfg.DefaultProxy)
	}

	// Automation-detection and background-throttling flags. Throttling
	// matters here: stabilization relies on timers firing while the
	// page is not focused.
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewExtractError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewExtractError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	pool := rod.NewPagePool(browserCfg.MaxPages)
	slog.Info("page pool created", "maxPages", browserCfg.MaxPages)

	s := &Scraper{
		browser:     browser,
		pagePool:    pool,
		browserCfg:  browserCfg,
		fetchCfg:    fetchCfg,
		dynamicCfg:  dynamicCfg,
		httpFetcher: newHTTPFetcher(browserCfg.DefaultProxy),
		memory:      engine.NewDomainMemory(1 * time.Hour),
		startTime:   time.Now(),
	}

	// Staged escalation for "auto" mode: HTTP starts immediately, the
	// browser joins only if HTTP has not produced a result within
	// HTTPTimeout.
	s.dispatcher = engine.NewDispatcher(
		[]engine.Engine{
			engine.New("http", s.engineFetchHTTP),
			engine.New("browser", s.engineFetchBrowser),
		},
		[]time.Duration{0, fetchCfg.HTTPTimeout},
		s.memory,
	)

	return s, nil
}

// Stats returns a snapshot of the pool's current state.
func (s *Scraper) Stats() models.PoolStats {
	return models.PoolStats{
		MaxPages:    s.browserCfg.MaxPages,
		ActivePages: int(s.activePages.Load()),
	}
}

// Close drains the page pool and kills the browser process.
// Call this on graceful shutdown to prevent zombie Chrome processes.
func (s *Scraper) Close() {
	s.memory.Stop()
	slog.Info("scraper shutting down: draining page pool")
	s.pagePool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	slog.Info("scraper shutting down: closing browser")
	s.browser.MustClose()
	slog.Info("scraper shutdown complete")
}
