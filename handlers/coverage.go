package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/staffhubio/staffhub/schedule"
	"github.com/staffhubio/staffhub/services"
)

type CoverageHandler struct {
	CoverageService *services.CoverageService
}

func NewCoverageHandler(coverageService *services.CoverageService) *CoverageHandler {
	return &CoverageHandler{
		CoverageService: coverageService,
	}
}

// GetCoverageReport returns per-day, weekly, and summary staffing analytics
// for a date range
func (h *CoverageHandler) GetCoverageReport(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to query params are required"})
		return
	}

	report, err := h.CoverageService.Report(c.Request.Context(), c.Query("department_id"), from, to)
	if err != nil {
		var timeErr *schedule.InvalidTimeRangeError
		var rangeErr *schedule.InvalidRangeError
		if errors.As(err, &timeErr) || errors.As(err, &rangeErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportCoverageCSV streams the per-day analysis as a CSV download
func (h *CoverageHandler) ExportCoverageCSV(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to query params are required"})
		return
	}

	data, err := h.CoverageService.ExportCSV(c.Request.Context(), c.Query("department_id"), from, to)
	if err != nil {
		var timeErr *schedule.InvalidTimeRangeError
		var rangeErr *schedule.InvalidRangeError
		if errors.As(err, &timeErr) || errors.As(err, &rangeErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("coverage_%s_%s.csv", from, to)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", data)
}
