package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
	"github.com/UniFest-2025/event-service/internal/services"
	"github.com/UniFest-2025/event-service/internal/utils"
	"github.com/UniFest-2025/event-service/internal/validator"
)

type EventHandler struct {
	BaseHandler
	eventService services.EventService
	validator    *validator.Validator
}

func NewEventHandler(eventService services.EventService, validator *validator.Validator, logger utils.Logger) *EventHandler {
	return &EventHandler{
		BaseHandler:  NewBaseHandler(logger),
		eventService: eventService,
		validator:    validator,
	}
}

// CreateEvent creates a new event as a draft
// @Summary Create event
// @Tags events
// @Accept json
// @Produce json
// @Param event body services.CreateEventRequest true "Event data"
// @Success 201 {object} services.EventResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /events [post]
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req services.CreateEventRequest
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

	event, err := h.eventService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// GetEvent retrieves an event by ID
// @Summary Get event
// @Tags events
// @Produce json
// @Param id path uint true "Event ID"
// @Success 200 {object} services.EventResponse
// @Failure 404 {object} ErrorResponse
// @Router /events/{id} [get]
func (h *EventHandler) GetEvent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	event, err := h.eventService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// GetEventWithDetails retrieves an event with its creator and counts
func (h *EventHandler) GetEventWithDetails(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	event, err := h.eventService.GetByIDWithDetails(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// UpdateEvent edits a draft event
// @Summary Update draft event
// @Tags events
// @Accept json
// @Produce json
// @Param id path uint true "Event ID"
// @Param event body services.UpdateEventRequest true "Event data"
// @Success 200 {object} services.EventResponse
// @Failure 409 {object} ErrorResponse
// @Router /events/{id} [put]
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateEventRequest
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

	event, err := h.eventService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// UpdatePublishedEvent edits the restricted field set of a live event
func (h *EventHandler) UpdatePublishedEvent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdatePublishedEventRequest
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

	event, err := h.eventService.UpdatePublished(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// UpdateCustomForm replaces the registration form of a draft event
func (h *EventHandler) UpdateCustomForm(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateCustomFormRequest
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

	event, err := h.eventService.UpdateCustomForm(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// DeleteEvent removes a draft event
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.eventService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Event deleted successfully"})
}

// ListEvents lists events with filters
// @Summary List events
// @Tags events
// @Produce json
// @Success 200 {object} services.EventListResponse
// @Router /events [get]
func (h *EventHandler) ListEvents(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := h.parseEventFilters(c)

	events, err := h.eventService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// SearchEvents searches published events by name and description
func (h *EventHandler) SearchEvents(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Missing search query"})
		return
	}

	filters := h.parseEventFilters(c)

	events, err := h.eventService.Search(c.Request.Context(), query, filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// GetMyEvents lists the calling organizer's events, drafts included
func (h *EventHandler) GetMyEvents(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := h.parseEventFilters(c)

	events, err := h.eventService.GetByOrganizer(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// PublishEvent makes a draft visible and opens registration
func (h *EventHandler) PublishEvent(c *gin.Context) {
	h.transitionEvent(c, h.eventService.Publish, "Event published successfully")
}

// StartEvent marks a published event as ongoing
func (h *EventHandler) StartEvent(c *gin.Context) {
	h.transitionEvent(c, h.eventService.Start, "Event started successfully")
}

// CloseEvent closes an ongoing event and completes its registrations
func (h *EventHandler) CloseEvent(c *gin.Context) {
	h.transitionEvent(c, h.eventService.Close, "Event closed successfully")
}

func (h *EventHandler) transitionEvent(c *gin.Context, transition func(ctx context.Context, id uint, userID string) error, message string) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Transitioning event", "event_id", id)

	if err := transition(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

func (h *EventHandler) parseEventFilters(c *gin.Context) repositories.EventFilters {
	limit, offset := h.parsePagination(c)

	filters := repositories.EventFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if status := c.Query("status"); status != "" {
		eventStatus := models.EventStatus(status)
		filters.Status = &eventStatus
	}
	if eventType := c.Query("event_type"); eventType != "" {
		et := models.EventType(eventType)
		filters.EventType = &et
	}
	if eligibility := c.Query("eligibility"); eligibility != "" {
		el := models.Eligibility(eligibility)
		filters.Eligibility = &el
	}
	if tag := c.Query("tag"); tag != "" {
		filters.Tag = &tag
	}
	if from := c.Query("date_from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filters.DateFrom = &t
		}
	}
	if to := c.Query("date_to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filters.DateTo = &t
		}
	}

	return filters
}
