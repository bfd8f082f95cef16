package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Broadcast event types carried over the discussion relay
const (
	EventNewMessage      = "discussion.new_message"
	EventNewAnnouncement = "discussion.new_announcement"
	EventReactionUpdate  = "discussion.reaction_update"
	EventMessagePinned   = "discussion.message_pinned"
	EventMessageDeleted  = "discussion.message_deleted"
)

// Registration lifecycle events published for downstream consumers
const (
	EventRegistrationCreated   = "registration.created"
	EventRegistrationCancelled = "registration.cancelled"
	EventOrderDecided          = "merch.order_decided"
	EventTicketScanned         = "ticket.scanned"
	EventStatusChanged         = "event.status_changed"
)

const (
	eventSource  = "event-service"
	eventVersion = "1.0"
)

// Event is the envelope every published message is wrapped in
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope with a fresh id and timestamp
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher abstracts the message transport. The production binary runs
// Kafka through watermill, the in-process relay runs a GoChannel pub/sub, and
// tests run the mock.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *Event) error
	Close() error
}

// DiscussionTopic is the per-event relay room
func DiscussionTopic(eventID uint) string {
	return fmt.Sprintf("discussion.event.%d", eventID)
}

// DomainTopic carries the registration/ticket lifecycle stream
const DomainTopic = "campus-events"
