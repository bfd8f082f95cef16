package repositories

import (
	"context"
	"time"

	"github.com/UniFest-2025/event-service/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TicketRepository interface for ticket-specific operations
type TicketRepository interface {
	Create(ctx context.Context, tx *gorm.DB, ticket *models.Ticket) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Ticket, error)
	GetByTicketID(ctx context.Context, tx *gorm.DB, ticketID string) (*models.Ticket, error)
	GetByTicketIDWithDetails(ctx context.Context, tx *gorm.DB, ticketID string) (*models.Ticket, error) // Include event, registration, participant
	GetByRegistration(ctx context.Context, tx *gorm.DB, registrationID uint) (*models.Ticket, error)
	Update(ctx context.Context, tx *gorm.DB, ticket *models.Ticket) error

	// MarkUsed flips is_used with a conditional update and reports false when
	// the ticket was already consumed. Concurrent scans of the same ticket
	// resolve to exactly one true.
	MarkUsed(ctx context.Context, tx *gorm.DB, ticketID string, usedAt time.Time, auditLog datatypes.JSON) (bool, error)

	ListByEvent(ctx context.Context, tx *gorm.DB, eventID uint) ([]*models.Ticket, error)

	// DeleteByEvent removes every ticket of one event, part of the organizer
	// cascade delete.
	DeleteByEvent(ctx context.Context, tx *gorm.DB, eventID uint) error
}
