package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/deepfetch/cleaner"
	"github.com/use-agent/deepfetch/models"
	"github.com/use-agent/deepfetch/scraper"
)

// Structured returns the handler for POST /api/v1/structured.
//
// The page is fetched in auto mode, then decomposed into metadata,
// heading-bounded sections, substantial paragraphs, links and images.
func Structured(sc *scraper.Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.StructuredRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.StructuredResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		fetchReq := &models.FetchRequest{
			URL:       req.URL,
			Timeout:   req.Timeout,
			Cookies:   req.Cookies,
			Headers:   req.Headers,
			AuthToken: req.AuthToken,
		}
		fetchReq.Defaults()

		page, err := sc.DoFetch(c.Request.Context(), fetchReq)
		if err != nil {
			respondStructuredError(c, err)
			return
		}

		doc, err := cleaner.Structure(page.HTML, page.FinalURL)
		if err != nil {
			respondStructuredError(c, models.NewExtractError(
				models.ErrCodeExtraction,
				"structured parsing failed",
				err,
			))
			return
		}
		if doc.Metadata.Title == "" {
			doc.Metadata.Title = page.Title
		}

		c.JSON(http.StatusOK, models.StructuredResponse{
			Success:  true,
			Document: doc,
		})
	}
}

func respondStructuredError(c *gin.Context, err error) {
	extractErr, ok := err.(*models.ExtractError)
	if !ok {
		extractErr = models.NewExtractError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(extractErr), models.StructuredResponse{
		Success: false,
		Error:   extractErr.ToDetail(),
	})
}
