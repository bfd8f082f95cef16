package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/UniFest-2025/event-service/internal/services"
	"github.com/UniFest-2025/event-service/internal/utils"
	"github.com/UniFest-2025/event-service/internal/validator"
)

type TicketHandler struct {
	BaseHandler
	ticketService services.TicketService
	validator     *validator.Validator
}

func NewTicketHandler(ticketService services.TicketService, validator *validator.Validator, logger utils.Logger) *TicketHandler {
	return &TicketHandler{
		BaseHandler:   NewBaseHandler(logger),
		ticketService: ticketService,
		validator:     validator,
	}
}

// GetTicket retrieves the ticket of a registration
func (h *TicketHandler) GetTicket(c *gin.Context) {
	registrationID := h.parseIDParam(c, "id")
	if registrationID == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	ticket, err := h.ticketService.GetByRegistration(c.Request.Context(), registrationID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// ListEventTickets lists an event's tickets for its organizer
func (h *TicketHandler) ListEventTickets(c *gin.Context) {
	eventID := h.parseIDParam(c, "id")
	if eventID == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	tickets, err := h.ticketService.ListByEvent(c.Request.Context(), eventID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: tickets})
}

// ScanTicket validates a scanned QR payload and checks the holder in
// @Summary Scan ticket
// @Tags tickets
// @Accept json
// @Produce json
// @Param scan body services.ScanRequest true "Scanned QR text"
// @Success 200 {object} services.ScanResponse
// @Failure 400 {object} ErrorResponse
// @Router /tickets/scan [post]
func (h *TicketHandler) ScanTicket(c *gin.Context) {
	var req services.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Scanning ticket")

	result, err := h.ticketService.Scan(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// VerifyTicket checks a ticket's validity without consuming it
func (h *TicketHandler) VerifyTicket(c *gin.Context) {
	var req services.VerifyTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	result, err := h.ticketService.Verify(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// OverrideAttendance forces a registration's attendance flag
func (h *TicketHandler) OverrideAttendance(c *gin.Context) {
	registrationID := h.parseIDParam(c, "id")
	if registrationID == 0 {
		return
	}

	var req services.AttendanceOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.ticketService.OverrideAttendance(c.Request.Context(), registrationID, &req, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Attendance updated successfully"})
}
