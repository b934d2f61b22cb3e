// Package engine implements staged fetch escalation: a fast plain-HTTP
// attempt first, a headless browser only when needed, with per-domain
// memory of which engine last worked.
package engine

import (
	"context"
	"net/http"
	"time"
)

// Engine is one way of turning a URL into rendered HTML.
type Engine interface {
	// Name returns the engine identifier (e.g. "http", "browser").
	Name() string

	// Fetch retrieves the page content for the given request.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a page.
type FetchRequest struct {
	URL       string
	Headers   map[string]string
	Cookies   []http.Cookie
	AuthToken string
	Proxy     string
	Timeout   time.Duration
	Stealth   bool

	// RemoveOverlays and BlockAds only apply to browser engines.
	RemoveOverlays bool
	BlockAds       bool
}

// FetchResult is the output of a successful engine fetch.
type FetchResult struct {
	HTML       string
	Title      string
	StatusCode int
	FinalURL   string
	EngineName string
}

// FetchFunc adapts a plain function to the Engine interface. The
// concrete fetchers live in the scraper package; wrapping them as
// functions here avoids an engine -> scraper import cycle.
type FetchFunc func(ctx context.Context, req *FetchRequest) (*FetchResult, error)

type funcEngine struct {
	name string
	fn   FetchFunc
}

// New wraps a fetch function as a named Engine.
func New(name string, fn FetchFunc) Engine {
	return &funcEngine{name: name, fn: fn}
}

func (e *funcEngine) Name() string { return e.name }

func (e *funcEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	result, err := e.fn(ctx, req)
	if err != nil {
		return nil, err
	}
	result.EngineName = e.name
	return result, nil
}
