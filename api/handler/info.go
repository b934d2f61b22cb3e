package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/deepfetch/models"
	"github.com/use-agent/deepfetch/scraper"
)

// Info returns the handler for GET /api/v1/info?url=...
//
// It answers with transport facts only (status, final URL after
// redirects, content type, headers), no body fetch.
func Info(sc *scraper.Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		target := c.Query("url")
		if target == "" {
			c.JSON(http.StatusBadRequest, models.URLInfoResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "missing required query parameter: url",
				},
			})
			return
		}

		info, err := sc.Info(c.Request.Context(), target)
		if err != nil {
			extractErr, ok := err.(*models.ExtractError)
			if !ok {
				extractErr = models.NewExtractError(models.ErrCodeInternal, err.Error(), err)
			}
			c.JSON(mapErrorToStatus(extractErr), models.URLInfoResponse{
				Success: false,
				Error:   extractErr.ToDetail(),
			})
			return
		}

		c.JSON(http.StatusOK, info)
	}
}
