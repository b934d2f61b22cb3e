package models

// FetchRequest is the payload for POST /api/v1/fetch.
type FetchRequest struct {
	// URL is the target page. Required.
	URL string `json:"url" binding:"required,url"`

	// Timeout is the maximum duration in seconds for the entire
	// fetch operation (navigation + rendering + extraction).
	// Default: 30. Max: 120.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`

	// FetchMode controls the fetching strategy.
	// "auto" (default): try HTTP first, escalate to a browser when the
	// response looks like an unrendered SPA shell.
	// "http": force pure HTTP (fastest, no JS rendering).
	// "browser": force headless Chrome.
	FetchMode string `json:"fetch_mode,omitempty" binding:"omitempty,oneof=auto browser http"`

	// OutputFormat controls the response body format.
	// Allowed: "text" (default), "markdown", "html".
	OutputFormat string `json:"output_format,omitempty" binding:"omitempty,oneof=text markdown html"`

	// ExtractMode controls static content extraction.
	// "readability" (default): extract the main article body.
	// "raw": pass the full page through unmodified.
	ExtractMode string `json:"extract_mode,omitempty" binding:"omitempty,oneof=readability raw"`

	// CSSSelector optionally narrows the page to matching elements
	// before cleaning.
	CSSSelector string `json:"css_selector,omitempty"`

	// Cookies is a browser-style cookie string ("name1=v1; name2=v2"),
	// typically exported from devtools for authenticated pages.
	Cookies string `json:"cookies,omitempty"`

	// Headers are extra request headers, either parsed from a header
	// string by the caller or supplied directly.
	Headers map[string]string `json:"headers,omitempty"`

	// AuthToken, when set, is sent as "Authorization: Bearer <token>".
	AuthToken string `json:"auth_token,omitempty"`

	// Stealth enables anti-bot-detection evasions on browser fetches.
	Stealth bool `json:"stealth,omitempty"`

	// RemoveOverlays strips cookie banners and modal overlays after
	// rendering (browser fetches only).
	RemoveOverlays bool `json:"remove_overlays,omitempty"`

	// BlockAds blocks requests to known ad/tracking domains
	// (browser fetches only).
	BlockAds bool `json:"block_ads,omitempty"`

	// ProxyURL overrides the default proxy for this request.
	ProxyURL string `json:"proxy_url,omitempty" binding:"omitempty,url"`

	// MaxAge enables the response cache: a cached result younger than
	// MaxAge milliseconds is returned without refetching.
	MaxAge int `json:"max_age,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *FetchRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 30
	}
	if r.FetchMode == "" {
		r.FetchMode = "auto"
	}
	if r.OutputFormat == "" {
		r.OutputFormat = "text"
	}
	if r.ExtractMode == "" {
		r.ExtractMode = "readability"
	}
}

// DynamicRequest is the payload for POST /api/v1/dynamic.
//
// It drives the stabilize-and-extract pipeline: the page is repeatedly
// scrolled and nudged until its content stops growing, then several
// extraction strategies run against the settled page.
type DynamicRequest struct {
	// URL is the target page. Required.
	URL string `json:"url" binding:"required,url"`

	// WaitTimeMs is the settle wait after navigation, before the first
	// scroll attempt. Default: 5000.
	WaitTimeMs int `json:"wait_time_ms,omitempty" binding:"omitempty,min=0,max=60000"`

	// MaxScrollAttempts caps the stabilization loop regardless of
	// convergence. Default: 50. Observed useful range: 20-100.
	MaxScrollAttempts int `json:"max_scroll_attempts,omitempty" binding:"omitempty,min=1,max=200"`

	// TimeoutMs is the overall deadline for the whole pipeline.
	// Default: 90000. On expiry a best-effort partial result is
	// returned rather than an error.
	TimeoutMs int `json:"timeout_ms,omitempty" binding:"omitempty,min=1000,max=600000"`

	// ManualWaitMs optionally holds the page open before stabilization
	// so a human can interact with the live browser (e.g. dismiss a
	// verification prompt). Zero disables it.
	ManualWaitMs int `json:"manual_wait_ms,omitempty" binding:"omitempty,min=0,max=600000"`

	// Merge controls the result shape. True (default) merges all
	// strategy outputs into one deduplicated corpus; false returns the
	// single best strategy's output.
	Merge *bool `json:"merge,omitempty"`

	// Cookies is a browser-style cookie string for authenticated pages.
	Cookies string `json:"cookies,omitempty"`

	// CDPURL, when set, attaches to an already-running browser over the
	// DevTools protocol instead of using the internal pool. An existing
	// tab showing the target URL is reused when present.
	CDPURL string `json:"cdp_url,omitempty"`

	// Stealth enables anti-bot-detection evasions.
	Stealth bool `json:"stealth,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *DynamicRequest) Defaults() {
	if r.WaitTimeMs == 0 {
		r.WaitTimeMs = 5000
	}
	if r.MaxScrollAttempts == 0 {
		r.MaxScrollAttempts = 50
	}
	if r.TimeoutMs == 0 {
		r.TimeoutMs = 90000
	}
	if r.Merge == nil {
		t := true
		r.Merge = &t
	}
}

// StructuredRequest is the payload for POST /api/v1/structured.
type StructuredRequest struct {
	// URL is the target page. Required.
	URL string `json:"url" binding:"required,url"`

	// Cookies, Headers and AuthToken carry caller-supplied session
	// material, as in FetchRequest.
	Cookies   string            `json:"cookies,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	AuthToken string            `json:"auth_token,omitempty"`

	// Timeout in seconds. Default: 30.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`
}

// Defaults applies default values to unset fields.
func (r *StructuredRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 30
	}
}
