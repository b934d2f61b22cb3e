package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/use-agent/deepfetch/engine"
	"github.com/use-agent/deepfetch/models"
)

// RawPage is an uncleaned fetched page, handed to the cleaner pipeline
// by the API layer.
type RawPage struct {
	HTML        string
	Title       string
	StatusCode  int
	FinalURL    string
	FetchMethod string
}

// errNeedsRender marks an HTTP fetch whose body looks like an
// unrendered SPA shell, so the dispatcher escalates to the browser.
var errNeedsRender = errors.New("page requires JS rendering")

// DoFetch retrieves the raw page according to the request's fetch mode.
//
// "http" and "browser" force the respective path. "auto" runs the
// staged engine escalation: plain HTTP first, browser when HTTP fails,
// stalls past HTTPTimeout, or returns an SPA shell.
func (s *Scraper) DoFetch(ctx context.Context, req *models.FetchRequest) (*RawPage, error) {
	timeout := time.Duration(req.Timeout) * time.Second
	if timeout > s.fetchCfg.MaxTimeout {
		timeout = s.fetchCfg.MaxTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	switch req.FetchMode {
	case "http":
		return s.fetchHTTP(ctx, req, false)
	case "browser":
		result, err := s.fetchBrowser(ctx, req)
		if err != nil {
			return nil, err
		}
		return rawFromBrowser(result), nil
	default:
		return s.fetchAuto(ctx, req)
	}
}

func (s *Scraper) fetchAuto(ctx context.Context, req *models.FetchRequest) (*RawPage, error) {
	host := ""
	if u, err := url.Parse(req.URL); err == nil {
		host = u.Hostname()
	}

	engReq := &engine.FetchRequest{
		URL:            req.URL,
		Headers:        req.Headers,
		Cookies:        ParseCookieString(req.Cookies, host),
		AuthToken:      req.AuthToken,
		Proxy:          req.ProxyURL,
		Stealth:        req.Stealth,
		RemoveOverlays: req.RemoveOverlays,
		BlockAds:       req.BlockAds,
	}

	result, err := s.dispatcher.Dispatch(ctx, engReq)
	if err == nil {
		return &RawPage{
			HTML:        result.HTML,
			Title:       result.Title,
			StatusCode:  result.StatusCode,
			FinalURL:    result.FinalURL,
			FetchMethod: result.EngineName,
		}, nil
	}

	// The race lost on both engines; one last direct browser attempt
	// with whatever deadline remains.
	slog.Warn("dispatcher failed, falling back to direct browser fetch",
		"url", req.URL, "error", err)
	browserResult, browserErr := s.fetchBrowser(ctx, req)
	if browserErr != nil {
		return nil, browserErr
	}
	return rawFromBrowser(browserResult), nil
}

// fetchHTTP performs the plain-HTTP path. When checkRender is set, an
// SPA-looking body is rejected with errNeedsRender instead of returned.
func (s *Scraper) fetchHTTP(ctx context.Context, req *models.FetchRequest, checkRender bool) (*RawPage, error) {
	host := ""
	if u, err := url.Parse(req.URL); err == nil {
		host = u.Hostname()
	}

	result, err := s.httpFetcher.fetch(ctx, req.URL, fetchOptions{
		headers:   req.Headers,
		cookies:   ParseCookieString(req.Cookies, host),
		authToken: req.AuthToken,
		proxy:     req.ProxyURL,
	})
	if err != nil {
		return nil, categorizeError(err, "HTTP fetch failed")
	}

	if checkRender && needsBrowser(result.body) {
		return nil, errNeedsRender
	}

	return &RawPage{
		HTML:        string(result.body),
		Title:       pageTitle(result.body),
		StatusCode:  result.statusCode,
		FinalURL:    result.finalURL,
		FetchMethod: "http",
	}, nil
}

// engineFetchHTTP is the dispatcher's HTTP engine.
func (s *Scraper) engineFetchHTTP(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	result, err := s.httpFetcher.fetch(ctx, req.URL, fetchOptions{
		headers:   req.Headers,
		cookies:   req.Cookies,
		authToken: req.AuthToken,
		proxy:     req.Proxy,
	})
	if err != nil {
		return nil, err
	}
	if needsBrowser(result.body) {
		return nil, fmt.Errorf("http engine: %w", errNeedsRender)
	}
	return &engine.FetchResult{
		HTML:       string(result.body),
		Title:      pageTitle(result.body),
		StatusCode: result.statusCode,
		FinalURL:   result.finalURL,
	}, nil
}

// engineFetchBrowser is the dispatcher's browser engine.
func (s *Scraper) engineFetchBrowser(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	fetchReq := &models.FetchRequest{
		URL:            req.URL,
		Headers:        req.Headers,
		Cookies:        cookieString(req.Cookies),
		AuthToken:      req.AuthToken,
		Stealth:        req.Stealth,
		RemoveOverlays: req.RemoveOverlays,
		BlockAds:       req.BlockAds,
	}
	result, err := s.fetchBrowser(ctx, fetchReq)
	if err != nil {
		return nil, err
	}
	return &engine.FetchResult{
		HTML:       result.rawHTML,
		Title:      result.title,
		StatusCode: result.statusCode,
		FinalURL:   result.finalURL,
	}, nil
}

func rawFromBrowser(r *browserResult) *RawPage {
	return &RawPage{
		HTML:        r.rawHTML,
		Title:       r.title,
		StatusCode:  r.statusCode,
		FinalURL:    r.finalURL,
		FetchMethod: "browser",
	}
}

// cookieString renders cookies back to the browser-style string form.
func cookieString(cookies []http.Cookie) string {
	if len(cookies) == 0 {
		return ""
	}
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// Info performs a HEAD request and reports status, final URL, content
// type and response headers without fetching the body.
func (s *Scraper) Info(ctx context.Context, targetURL string) (*models.URLInfoResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchCfg.DefaultTimeout)
	defer cancel()

	status, headers, finalURL, err := s.httpFetcher.head(ctx, targetURL, fetchOptions{})
	if err != nil {
		return nil, categorizeError(err, "HEAD request failed")
	}

	flat := make(map[string]string, len(headers))
	for k := range headers {
		flat[k] = headers.Get(k)
	}

	return &models.URLInfoResponse{
		Success:     true,
		StatusCode:  status,
		FinalURL:    finalURL,
		ContentType: headers.Get("Content-Type"),
		Headers:     flat,
	}, nil
}
