package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gin-gonic/gin"

	"github.com/UniFest-2025/event-service/internal/events"
	"github.com/UniFest-2025/event-service/internal/services"
	"github.com/UniFest-2025/event-service/internal/utils"
	"github.com/UniFest-2025/event-service/internal/validator"
)

// discussionSubscriber is implemented by publishers that support in-process
// fan-out; the Kafka publisher does not, external consumers read the topic
// directly.
type discussionSubscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

type DiscussionHandler struct {
	BaseHandler
	discussionService services.DiscussionService
	eventPublisher    events.EventPublisher
	validator         *validator.Validator
}

func NewDiscussionHandler(discussionService services.DiscussionService, publisher events.EventPublisher, validator *validator.Validator, logger utils.Logger) *DiscussionHandler {
	return &DiscussionHandler{
		BaseHandler:       NewBaseHandler(logger),
		discussionService: discussionService,
		eventPublisher:    publisher,
		validator:         validator,
	}
}

// PostMessage posts a message or announcement to an event's discussion
// @Summary Post discussion message
// @Tags discussions
// @Accept json
// @Produce json
// @Param id path uint true "Event ID"
// @Param message body services.PostMessageRequest true "Message data"
// @Success 201 {object} services.MessageResponse
// @Router /events/{id}/discussion [post]
func (h *DiscussionHandler) PostMessage(c *gin.Context) {
	eventID := h.parseIDParam(c, "id")
	if eventID == 0 {
		return
	}

	var req services.PostMessageRequest
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

	msg, err := h.discussionService.PostMessage(c.Request.Context(), eventID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// GetThread retrieves the full discussion tree of an event
func (h *DiscussionHandler) GetThread(c *gin.Context) {
	eventID := h.parseIDParam(c, "id")
	if eventID == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	thread, err := h.discussionService.GetThread(c.Request.Context(), eventID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, thread)
}

// PinMessage pins a message to the top of the thread
func (h *DiscussionHandler) PinMessage(c *gin.Context) {
	h.setPinned(c, true, "Message pinned successfully")
}

// UnpinMessage removes a message's pin
func (h *DiscussionHandler) UnpinMessage(c *gin.Context) {
	h.setPinned(c, false, "Message unpinned successfully")
}

func (h *DiscussionHandler) setPinned(c *gin.Context, pinned bool, successMessage string) {
	messageID := h.parseIDParam(c, "message_id")
	if messageID == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.discussionService.PinMessage(c.Request.Context(), messageID, pinned, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: successMessage})
}

// DeleteMessage soft-deletes a message
func (h *DiscussionHandler) DeleteMessage(c *gin.Context) {
	messageID := h.parseIDParam(c, "message_id")
	if messageID == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.discussionService.DeleteMessage(c.Request.Context(), messageID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Message deleted successfully"})
}

// React toggles the caller's reaction on a message
func (h *DiscussionHandler) React(c *gin.Context) {
	messageID := h.parseIDParam(c, "message_id")
	if messageID == 0 {
		return
	}

	var req services.ReactionRequest
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

	msg, err := h.discussionService.React(c.Request.Context(), messageID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}

// StreamDiscussion relays an event's discussion broadcasts over
// server-sent events until the client disconnects.
func (h *DiscussionHandler) StreamDiscussion(c *gin.Context) {
	eventID := h.parseIDParam(c, "id")
	if eventID == 0 {
		return
	}

	if _, ok := h.requireUserID(c); !ok {
		return
	}

	subscriber, ok := h.eventPublisher.(discussionSubscriber)
	if !ok {
		c.JSON(http.StatusNotImplemented, ErrorResponse{
			Message: "Live discussion streaming is not available on this deployment",
		})
		return
	}

	ctx := c.Request.Context()
	messages, err := subscriber.Subscribe(ctx, events.DiscussionTopic(eventID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Discussion stream opened", "event_id", eventID)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, open := <-messages:
			if !open {
				return false
			}
			c.SSEvent(msg.Metadata.Get("event_type"), string(msg.Payload))
			msg.Ack()
			return true
		case <-ctx.Done():
			return false
		}
	})
}
