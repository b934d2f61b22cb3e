package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/deepfetch/models"
	"github.com/use-agent/deepfetch/scraper"
)

// Dynamic returns the handler for POST /api/v1/dynamic.
//
// The response is built from the extraction report: deduplicated
// fragments joined in deterministic order, the winning strategy name,
// and the convergence facts. A timed-out run with salvaged content is
// still a 200 with timed_out set; only a completely empty salvage
// becomes an error.
func Dynamic(sc *scraper.Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.DynamicRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.DynamicResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		result, err := sc.DoDynamic(c.Request.Context(), &req)
		if err != nil {
			respondDynamicError(c, err, models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
			})
			return
		}

		report := result.Report
		c.JSON(http.StatusOK, models.DynamicResponse{
			Success:         true,
			FinalURL:        result.FinalURL,
			Content:         report.Corpus.Text(),
			Strategy:        report.Strategy,
			Fragments:       report.Corpus.Len(),
			TotalCharacters: report.TotalCharacters,
			AttemptsUsed:    report.AttemptsUsed,
			Converged:       report.Converged,
			TimedOut:        report.TimedOut,
			Timing: models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
			},
		})
	}
}

func respondDynamicError(c *gin.Context, err error, timing models.TimingInfo) {
	extractErr, ok := err.(*models.ExtractError)
	if !ok {
		extractErr = models.NewExtractError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(extractErr), models.DynamicResponse{
		Success: false,
		Error:   extractErr.ToDetail(),
		Timing:  timing,
	})
}
