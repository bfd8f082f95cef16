package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/UniFest-2025/event-service/internal/services"
	"github.com/UniFest-2025/event-service/internal/utils"
)

type AnalyticsHandler struct {
	BaseHandler
	analyticsService services.AnalyticsService
	exportService    services.ExportService
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService, exportService services.ExportService, logger utils.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      NewBaseHandler(logger),
		analyticsService: analyticsService,
		exportService:    exportService,
	}
}

// GetEventStats returns attendance and revenue totals for one event
// @Summary Event statistics
// @Tags analytics
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} repositories.EventStats
// @Failure 403 {object} ErrorResponse
// @Router /events/{id}/stats [get]
func (h *AnalyticsHandler) GetEventStats(c *gin.Context) {
	eventID := h.parseIDParam(c, "id")
	if eventID == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	stats, err := h.analyticsService.GetEventStats(c.Request.Context(), eventID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetOrganizerStats returns the dashboard rollup for the caller's events
func (h *AnalyticsHandler) GetOrganizerStats(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	organizerID := c.Param("organizer_id")
	if organizerID == "" {
		organizerID = userID
	}

	stats, err := h.analyticsService.GetOrganizerStats(c.Request.Context(), organizerID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetPlatformStats returns platform-wide totals for the admin dashboard
func (h *AnalyticsHandler) GetPlatformStats(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	stats, err := h.analyticsService.GetPlatformStats(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportAttendance downloads the attendance sheet as CSV or XLSX
// @Summary Export attendance
// @Tags analytics
// @Produce octet-stream
// @Param id path int true "Event ID"
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} binary
// @Router /events/{id}/export [get]
func (h *AnalyticsHandler) ExportAttendance(c *gin.Context) {
	eventID := h.parseIDParam(c, "id")
	if eventID == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	format := c.DefaultQuery("format", "csv")

	var result *services.ExportResult
	var err error
	switch format {
	case "csv":
		result, err = h.exportService.ExportAttendanceCSV(c.Request.Context(), eventID, userID)
	case "xlsx":
		result, err = h.exportService.ExportAttendanceXLSX(c.Request.Context(), eventID, userID)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid export format",
			Details: "supported formats: csv, xlsx",
		})
		return
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Exporting attendance", "event_id", eventID, "format", format)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
