package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bahsow/fleetdesk/internal/service/reporting"
)

// ownerKey is set by the router's owner middleware.
const ownerKey = "owner_id"

// AnalyticsHandler serves the aggregated dashboard data and report triggers.
type AnalyticsHandler struct {
	svc    *reporting.Service
	logger *zap.Logger
}

// NewAnalyticsHandler constructs the HTTP handler adapter.
func NewAnalyticsHandler(svc *reporting.Service, logger *zap.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsHandler{svc: svc, logger: logger}
}

// GetAnalytics aggregates the owner's entries and expenses for the requested
// range (default: trailing 30 days). A failed store read still returns 200
// with the Error field set; the client renders both cases from one shape.
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	from, to, err := dateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data := h.svc.BuildAnalytics(c.Request.Context(), ownerID(c), from, to)
	c.JSON(http.StatusOK, data)
}

// ExportReport triggers the monthly report export for the given month
// (default: previous month).
func (h *AnalyticsHandler) ExportReport(c *gin.Context) {
	month := time.Now().AddDate(0, -1, 0)
	if raw := c.Query("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
			return
		}
		month = parsed
	}

	if err := h.svc.ExportMonthlyReport(c.Request.Context(), ownerID(c), month); err != nil {
		h.logger.Error("failed exporting monthly report", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to export report"})
		return
	}

	c.Status(http.StatusAccepted)
}

func ownerID(c *gin.Context) string {
	return c.GetString(ownerKey)
}

// dateRange reads the from/to query params, defaulting to the trailing 30
// days ending today.
func dateRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("from must be YYYY-MM-DD")
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("to must be YYYY-MM-DD")
		}
		// Include the whole end day.
		to = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to must not precede from")
	}
	return from, to, nil
}
