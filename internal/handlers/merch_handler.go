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

type MerchHandler struct {
	BaseHandler
	merchService services.MerchService
	validator    *validator.Validator
}

func NewMerchHandler(merchService services.MerchService, validator *validator.Validator, logger utils.Logger) *MerchHandler {
	return &MerchHandler{
		BaseHandler:  NewBaseHandler(logger),
		merchService: merchService,
		validator:    validator,
	}
}

// Purchase buys merchandise with immediate stock commitment
// @Summary Purchase merchandise
// @Tags merch
// @Accept json
// @Produce json
// @Param id path uint true "Event ID"
// @Param purchase body services.PurchaseRequest true "Purchase data"
// @Success 201 {object} services.RegistrationResponse
// @Failure 409 {object} ErrorResponse
// @Router /events/{id}/purchase [post]
func (h *MerchHandler) Purchase(c *gin.Context) {
	eventID := h.parseIDParam(c, "id")
	if eventID == 0 {
		return
	}

	var req services.PurchaseRequest
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

	purchase, err := h.merchService.Purchase(c.Request.Context(), eventID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, purchase)
}

// PlaceOrder submits an order with payment proof for organizer approval
func (h *MerchHandler) PlaceOrder(c *gin.Context) {
	eventID := h.parseIDParam(c, "id")
	if eventID == 0 {
		return
	}

	var req services.PlaceOrderRequest
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

	order, err := h.merchService.PlaceOrder(c.Request.Context(), eventID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// ListOrders lists an event's pending orders for its organizer
func (h *MerchHandler) ListOrders(c *gin.Context) {
	eventID := h.parseIDParam(c, "id")
	if eventID == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	limit, offset := h.parsePagination(c)
	filters := repositories.RegistrationFilters{Limit: limit, Offset: offset}
	if status := c.Query("merch_payment_status"); status != "" {
		mps := models.MerchPaymentStatus(status)
		filters.MerchPaymentStatus = &mps
	}

	orders, err := h.merchService.ListOrders(c.Request.Context(), eventID, filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

// ApproveOrder approves a pending order and commits its stock
func (h *MerchHandler) ApproveOrder(c *gin.Context) {
	orderID := h.parseIDParam(c, "id")
	if orderID == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Approving order", "order_id", orderID)

	order, err := h.merchService.ApproveOrder(c.Request.Context(), orderID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// RejectOrder rejects a pending order with a reason
func (h *MerchHandler) RejectOrder(c *gin.Context) {
	orderID := h.parseIDParam(c, "id")
	if orderID == 0 {
		return
	}

	var req services.RejectOrderRequest
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

	order, err := h.merchService.RejectOrder(c.Request.Context(), orderID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}
