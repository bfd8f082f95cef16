package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/UniFest-2025/event-service/internal/services"
	"github.com/UniFest-2025/event-service/internal/utils"
	"github.com/UniFest-2025/event-service/internal/validator"
)

type AccountHandler struct {
	BaseHandler
	accountService services.AccountService
	validator      *validator.Validator
}

func NewAccountHandler(accountService services.AccountService, validator *validator.Validator, logger utils.Logger) *AccountHandler {
	return &AccountHandler{
		BaseHandler:    NewBaseHandler(logger),
		accountService: accountService,
		validator:      validator,
	}
}

// Signup creates a participant account
// @Summary Sign up
// @Tags accounts
// @Accept json
// @Produce json
// @Param signup body services.SignupRequest true "Account data"
// @Success 201 {object} models.User
// @Failure 409 {object} ErrorResponse
// @Router /auth/signup [post]
func (h *AccountHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	user, err := h.accountService.Signup(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// GetProfile returns the caller's profile
func (h *AccountHandler) GetProfile(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	user, err := h.accountService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateParticipantProfile updates the caller's participant profile
func (h *AccountHandler) UpdateParticipantProfile(c *gin.Context) {
	var req services.UpdateParticipantProfileRequest
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

	user, err := h.accountService.UpdateParticipantProfile(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateOrganizerProfile updates the caller's organizer profile
func (h *AccountHandler) UpdateOrganizerProfile(c *gin.Context) {
	var req services.UpdateOrganizerProfileRequest
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

	user, err := h.accountService.UpdateOrganizerProfile(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// FollowOrganizer subscribes the caller to an organizer
func (h *AccountHandler) FollowOrganizer(c *gin.Context) {
	h.setFollow(c, true, "Organizer followed successfully")
}

// UnfollowOrganizer removes the caller's subscription to an organizer
func (h *AccountHandler) UnfollowOrganizer(c *gin.Context) {
	h.setFollow(c, false, "Organizer unfollowed successfully")
}

func (h *AccountHandler) setFollow(c *gin.Context, follow bool, successMessage string) {
	organizerID := c.Param("organizer_id")
	if organizerID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid organizer_id"})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.accountService.FollowOrganizer(c.Request.Context(), userID, organizerID, follow); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: successMessage})
}

// RequestPasswordReset queues an admin-reviewed credential reset
func (h *AccountHandler) RequestPasswordReset(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	request, err := h.accountService.RequestPasswordReset(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, request)
}
