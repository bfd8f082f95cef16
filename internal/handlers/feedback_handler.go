package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/UniFest-2025/event-service/internal/repositories"
	"github.com/UniFest-2025/event-service/internal/services"
	"github.com/UniFest-2025/event-service/internal/utils"
	"github.com/UniFest-2025/event-service/internal/validator"
)

type FeedbackHandler struct {
	BaseHandler
	feedbackService services.FeedbackService
	validator       *validator.Validator
}

func NewFeedbackHandler(feedbackService services.FeedbackService, validator *validator.Validator, logger utils.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		BaseHandler:     NewBaseHandler(logger),
		feedbackService: feedbackService,
		validator:       validator,
	}
}

// SubmitFeedback records the caller's rating for a closed event
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	eventID := h.parseIDParam(c, "id")
	if eventID == 0 {
		return
	}

	var req services.FeedbackCreateRequest
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

	if err := h.feedbackService.Submit(c.Request.Context(), eventID, &req, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Message: "Feedback submitted successfully"})
}

// ListFeedback lists an event's anonymized feedback for its organizer
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	eventID := h.parseIDParam(c, "id")
	if eventID == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	limit, offset := h.parsePagination(c)
	filters := repositories.FeedbackFilters{Limit: limit, Offset: offset}
	if minRating := h.parseIntQuery(c, "min_rating", 0); minRating > 0 {
		filters.MinRating = &minRating
	}

	feedback, total, err := h.feedbackService.ListByEvent(c.Request.Context(), eventID, filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feedback": feedback,
		"total":    total,
	})
}

// GetEventRating returns the aggregate rating of an event
func (h *FeedbackHandler) GetEventRating(c *gin.Context) {
	eventID := h.parseIDParam(c, "id")
	if eventID == 0 {
		return
	}

	rating, err := h.feedbackService.GetEventRating(c.Request.Context(), eventID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rating)
}
