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

type AdminHandler struct {
	BaseHandler
	adminService services.AdminService
	validator    *validator.Validator
}

func NewAdminHandler(adminService services.AdminService, validator *validator.Validator, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  NewBaseHandler(logger),
		adminService: adminService,
		validator:    validator,
	}
}

// CreateOrganizer provisions a new organizer account
// @Summary Create organizer
// @Tags admin
// @Accept json
// @Produce json
// @Param organizer body services.CreateOrganizerRequest true "Organizer data"
// @Success 201 {object} services.OrganizerResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/organizers [post]
func (h *AdminHandler) CreateOrganizer(c *gin.Context) {
	var req services.CreateOrganizerRequest
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

	organizer, err := h.adminService.CreateOrganizer(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, organizer)
}

// ListOrganizers lists organizer accounts
func (h *AdminHandler) ListOrganizers(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	limit, offset := h.parsePagination(c)
	filters := repositories.UserFilters{
		Query:  c.Query("q"),
		Limit:  limit,
		Offset: offset,
	}

	organizers, total, err := h.adminService.ListOrganizers(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organizers": organizers,
		"total":      total,
	})
}

// DisableOrganizer locks an organizer account out
func (h *AdminHandler) DisableOrganizer(c *gin.Context) {
	h.setDisabled(c, true, "Organizer disabled successfully")
}

// EnableOrganizer restores a disabled organizer account
func (h *AdminHandler) EnableOrganizer(c *gin.Context) {
	h.setDisabled(c, false, "Organizer enabled successfully")
}

func (h *AdminHandler) setDisabled(c *gin.Context, disabled bool, successMessage string) {
	organizerID := c.Param("organizer_id")
	if organizerID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid organizer_id"})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.adminService.SetOrganizerDisabled(c.Request.Context(), organizerID, disabled, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: successMessage})
}

// ArchiveOrganizer archives an organizer account
func (h *AdminHandler) ArchiveOrganizer(c *gin.Context) {
	h.setArchived(c, true, "Organizer archived successfully")
}

// RestoreOrganizer restores an archived organizer account
func (h *AdminHandler) RestoreOrganizer(c *gin.Context) {
	h.setArchived(c, false, "Organizer restored successfully")
}

func (h *AdminHandler) setArchived(c *gin.Context, archived bool, successMessage string) {
	organizerID := c.Param("organizer_id")
	if organizerID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid organizer_id"})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.adminService.SetOrganizerArchived(c.Request.Context(), organizerID, archived, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: successMessage})
}

// DeleteOrganizer removes an organizer account and its events
func (h *AdminHandler) DeleteOrganizer(c *gin.Context) {
	organizerID := c.Param("organizer_id")
	if organizerID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid organizer_id"})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting organizer", "organizer_id", organizerID)

	if err := h.adminService.DeleteOrganizer(c.Request.Context(), organizerID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Organizer deleted successfully"})
}

// ListResetRequests lists queued password reset requests
func (h *AdminHandler) ListResetRequests(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	limit, offset := h.parsePagination(c)
	filters := repositories.ResetRequestFilters{Limit: limit, Offset: offset}
	if status := c.Query("status"); status != "" {
		resetStatus := models.ResetRequestStatus(status)
		filters.Status = &resetStatus
	}

	requests, total, err := h.adminService.ListResetRequests(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"total":    total,
	})
}

// ApproveResetRequest approves a reset and rotates the credential
func (h *AdminHandler) ApproveResetRequest(c *gin.Context) {
	h.resolveReset(c, true)
}

// RejectResetRequest rejects a reset request
func (h *AdminHandler) RejectResetRequest(c *gin.Context) {
	h.resolveReset(c, false)
}

func (h *AdminHandler) resolveReset(c *gin.Context, approve bool) {
	requestID := h.parseIDParam(c, "id")
	if requestID == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	result, err := h.adminService.ResolveResetRequest(c.Request.Context(), requestID, approve, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
