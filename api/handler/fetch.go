package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/deepfetch/cache"
	"github.com/use-agent/deepfetch/cleaner"
	"github.com/use-agent/deepfetch/models"
	"github.com/use-agent/deepfetch/scraper"
)

// Fetch returns the handler for POST /api/v1/fetch.
//
// Orchestration flow:
//  1. Parse and validate the request, apply defaults.
//  2. Cache lookup when the caller set max_age.
//  3. Scraper.DoFetch    (records navigation_ms)
//  4. Optional CSS selector narrowing.
//  5. Cleaner.Clean      (records extraction_ms)
//  6. Merge metadata, fill timing, respond.
func Fetch(sc *scraper.Scraper, cl *cleaner.Cleaner, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.FetchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.FetchResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		cacheKey := cache.Key(req.URL, req.OutputFormat, req.ExtractMode, req.CSSSelector)
		if cc != nil && req.MaxAge > 0 {
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				cached.CacheStatus = "hit"
				cached.Timing = models.TimingInfo{
					TotalMs: time.Since(totalStart).Milliseconds(),
				}
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		navStart := time.Now()
		page, err := sc.DoFetch(c.Request.Context(), &req)
		navigationMs := time.Since(navStart).Milliseconds()

		if err != nil {
			respondError(c, err, models.TimingInfo{
				TotalMs:      time.Since(totalStart).Milliseconds(),
				NavigationMs: navigationMs,
			})
			return
		}

		extractStart := time.Now()
		markup := page.HTML
		if req.CSSSelector != "" {
			narrowed, selErr := cleaner.ApplyCSSSelector(markup, req.CSSSelector)
			if selErr != nil {
				respondError(c, models.NewExtractError(
					models.ErrCodeInvalidInput,
					"invalid CSS selector",
					selErr,
				), models.TimingInfo{
					TotalMs:      time.Since(totalStart).Milliseconds(),
					NavigationMs: navigationMs,
				})
				return
			}
			markup = narrowed
		}

		resp, err := cl.Clean(markup, req.URL, req.OutputFormat, req.ExtractMode)
		extractionMs := time.Since(extractStart).Milliseconds()

		if err != nil {
			respondError(c, err, models.TimingInfo{
				TotalMs:      time.Since(totalStart).Milliseconds(),
				NavigationMs: navigationMs,
				ExtractionMs: extractionMs,
			})
			return
		}

		// Readability usually extracts a better title, but on raw
		// passthrough it is empty; fall back to the rendered title.
		if resp.Metadata.Title == "" {
			resp.Metadata.Title = page.Title
		}

		resp.StatusCode = page.StatusCode
		resp.FinalURL = page.FinalURL
		resp.FetchMethod = page.FetchMethod
		resp.Timing = models.TimingInfo{
			TotalMs:      time.Since(totalStart).Milliseconds(),
			NavigationMs: navigationMs,
			ExtractionMs: extractionMs,
		}

		if cc != nil && req.MaxAge > 0 {
			cc.Set(cacheKey, resp)
			resp.CacheStatus = "miss"
		}

		c.JSON(http.StatusOK, resp)
	}
}

// respondError maps an ExtractError to the matching HTTP status and
// writes a structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	var extractErr *models.ExtractError
	if !errors.As(err, &extractErr) {
		extractErr = models.NewExtractError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(extractErr), models.FetchResponse{
		Success: false,
		Error:   extractErr.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ExtractError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation:
		return http.StatusBadGateway // 502
	case models.ErrCodeNoContent:
		return http.StatusUnprocessableEntity // 422
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
