package models

// FetchResponse is the response for POST /api/v1/fetch.
type FetchResponse struct {
	// Success indicates whether the fetch completed without errors.
	Success bool `json:"success"`

	// StatusCode is the HTTP status code from the fetched page.
	StatusCode int `json:"status_code"`

	// FinalURL is the URL after following all redirects.
	FinalURL string `json:"final_url"`

	// Content is the cleaned output in the requested format.
	Content string `json:"content"`

	// Metadata contains extracted page metadata.
	Metadata Metadata `json:"metadata"`

	// Characters reports content sizes before and after cleaning.
	Characters CharacterInfo `json:"characters"`

	// FetchMethod records how the page was fetched: "http" or "browser".
	FetchMethod string `json:"fetch_method,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// DynamicResponse is the response for POST /api/v1/dynamic.
type DynamicResponse struct {
	// Success indicates whether any content was retrieved. A timed-out
	// but salvaged extraction still reports Success with TimedOut set.
	Success bool `json:"success"`

	// FinalURL is the page URL after rendering.
	FinalURL string `json:"final_url"`

	// Content is the extracted text, fragments joined by blank lines in
	// deterministic order (longest first).
	Content string `json:"content"`

	// Strategy names the winning extraction strategy, or "merged" when
	// all strategies were combined, or "salvage" for a partial result
	// captured after the deadline expired.
	Strategy string `json:"strategy"`

	// Fragments is the number of deduplicated text fragments kept.
	Fragments int `json:"fragments"`

	// TotalCharacters is the size of Content.
	TotalCharacters int `json:"total_characters"`

	// AttemptsUsed is the number of scroll/interaction attempts made.
	AttemptsUsed int `json:"attempts_used"`

	// Converged reports whether content growth stopped before the
	// attempt cap.
	Converged bool `json:"converged"`

	// TimedOut reports that the overall deadline expired and Content is
	// a best-effort partial result.
	TimedOut bool `json:"timed_out"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// StructuredResponse is the response for POST /api/v1/structured.
type StructuredResponse struct {
	Success  bool         `json:"success"`
	Document *Document    `json:"document,omitempty"`
	Error    *ErrorDetail `json:"error,omitempty"`
}

// Document is the structured view of a page: metadata, heading-bounded
// sections, substantial paragraphs, links and images.
type Document struct {
	Metadata      Metadata  `json:"metadata"`
	Sections      []Section `json:"sections"`
	Paragraphs    []string  `json:"paragraphs"`
	Links         []Link    `json:"links"`
	Images        []Image   `json:"images"`
	TotalSections int       `json:"total_sections"`
	TotalLinks    int       `json:"total_links"`
	TotalImages   int       `json:"total_images"`
}

// Section is one heading and the content that follows it up to the next
// heading of the same or higher level.
type Section struct {
	Level   int    `json:"level"`
	Heading string `json:"heading"`
	Content string `json:"content"`
}

// Link represents a hyperlink extracted from the page.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text,omitempty"`
}

// Image represents an image element extracted from the page.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

// Metadata holds page-level information extracted during fetching.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	SiteName    string `json:"site_name,omitempty"`
	Author      string `json:"author,omitempty"`
	Language    string `json:"language,omitempty"`
	SourceURL   string `json:"source_url"`
}

// CharacterInfo reports content sizes before and after cleaning.
type CharacterInfo struct {
	// Original is the character count of the raw page markup.
	Original int `json:"original"`

	// Cleaned is the character count of the cleaned output.
	Cleaned int `json:"cleaned"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// NavigationMs is the time spent fetching and rendering the page.
	NavigationMs int64 `json:"navigation_ms"`

	// ExtractionMs is the time spent extracting and converting content.
	ExtractionMs int64 `json:"extraction_ms"`
}

// URLInfoResponse is the response for GET /api/v1/info.
type URLInfoResponse struct {
	Success     bool              `json:"success"`
	StatusCode  int               `json:"status_code"`
	FinalURL    string            `json:"final_url"`
	ContentType string            `json:"content_type"`
	Headers     map[string]string `json:"headers"`
	Error       *ErrorDetail      `json:"error,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string    `json:"status"` // "healthy" or "degraded"
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool_stats"`
	Version   string    `json:"version"`
}

// PoolStats reports the state of the browser page pool.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	ActivePages int `json:"active_pages"`
}
