package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
	"github.com/UniFest-2025/event-service/internal/services"
	"github.com/UniFest-2025/event-service/internal/utils"
	"github.com/UniFest-2025/event-service/internal/validator"
)

type RegistrationHandler struct {
	BaseHandler
	registrationService services.RegistrationService
	validator           *validator.Validator
}

func NewRegistrationHandler(registrationService services.RegistrationService, validator *validator.Validator, logger utils.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		BaseHandler:         NewBaseHandler(logger),
		registrationService: registrationService,
		validator:           validator,
	}
}

// Register registers the caller for an event
// @Summary Register for event
// @Tags registrations
// @Accept json
// @Produce json
// @Param id path uint true "Event ID"
// @Param registration body services.RegisterRequest true "Registration data"
// @Success 201 {object} services.RegistrationResponse
// @Failure 409 {object} ErrorResponse
// @Router /events/{id}/register [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	eventID := h.parseIDParam(c, "id")
	if eventID == 0 {
		return
	}

	var req services.RegisterRequest
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

	registration, err := h.registrationService.Register(c.Request.Context(), eventID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, registration)
}

// Cancel cancels the caller's live registration for an event
func (h *RegistrationHandler) Cancel(c *gin.Context) {
	eventID := h.parseIDParam(c, "id")
	if eventID == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.registrationService.Cancel(c.Request.Context(), eventID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Registration cancelled successfully"})
}

// GetRegistration retrieves a single registration with its ticket
func (h *RegistrationHandler) GetRegistration(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	registration, err := h.registrationService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, registration)
}

// GetMyRegistrations lists the caller's registrations
func (h *RegistrationHandler) GetMyRegistrations(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := h.parseRegistrationFilters(c)

	registrations, err := h.registrationService.GetByParticipant(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, registrations)
}

// GetEventRegistrations lists an event's registrations for its organizer
func (h *RegistrationHandler) GetEventRegistrations(c *gin.Context) {
	eventID := h.parseIDParam(c, "id")
	if eventID == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := h.parseRegistrationFilters(c)

	registrations, err := h.registrationService.GetByEvent(c.Request.Context(), eventID, filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, registrations)
}

// GetTrendingEvents lists events ranked by recent registrations
func (h *RegistrationHandler) GetTrendingEvents(c *gin.Context) {
	limit := h.parseIntQuery(c, "limit", 0)

	trending, err := h.registrationService.GetTrendingEvents(c.Request.Context(), limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: trending})
}

func (h *RegistrationHandler) parseRegistrationFilters(c *gin.Context) repositories.RegistrationFilters {
	limit, offset := h.parsePagination(c)

	filters := repositories.RegistrationFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if status := c.Query("status"); status != "" {
		registrationStatus := models.RegistrationStatus(status)
		filters.Status = &registrationStatus
	}
	if merchStatus := c.Query("merch_payment_status"); merchStatus != "" {
		mps := models.MerchPaymentStatus(merchStatus)
		filters.MerchPaymentStatus = &mps
	}

	return filters
}
