package repositories

import (
	"context"

	"github.com/UniFest-2025/event-service/internal/models"
	"gorm.io/gorm"
)

// RegistrationRepository interface for registration-specific operations
type RegistrationRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, registration *models.Registration) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Registration, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Registration, error) // Include event and participant
	Update(ctx context.Context, tx *gorm.DB, registration *models.Registration) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// DeleteByEvent removes every registration of one event, part of the
	// organizer cascade delete.
	DeleteByEvent(ctx context.Context, tx *gorm.DB, eventID uint) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters RegistrationFilters) ([]*models.Registration, int64, error)
	GetByEvent(ctx context.Context, tx *gorm.DB, eventID uint, filters RegistrationFilters) ([]*models.Registration, int64, error)
	GetByParticipant(ctx context.Context, tx *gorm.DB, participantID string, filters RegistrationFilters) ([]*models.Registration, int64, error)

	// GetActiveByEventAndParticipant returns the participant's registration
	// for the event that still counts (not cancelled, not rejected), or
	// gorm.ErrRecordNotFound.
	GetActiveByEventAndParticipant(ctx context.Context, tx *gorm.DB, eventID uint, participantID string) (*models.Registration, error)

	// Counters used for capacity and purchase-limit enforcement
	CountActiveByEvent(ctx context.Context, tx *gorm.DB, eventID uint) (int64, error)
	SumQuantityByParticipant(ctx context.Context, tx *gorm.DB, eventID uint, participantID string) (int, error)

	// Bulk status flips: closing an event completes its registered rows,
	// cancelling flips a participant's rows for one event.
	BulkUpdateStatusByEvent(ctx context.Context, tx *gorm.DB, eventID uint, from []models.RegistrationStatus, to models.RegistrationStatus) (int64, error)
	BulkUpdateStatusByParticipant(ctx context.Context, tx *gorm.DB, eventID uint, participantID string, from []models.RegistrationStatus, to models.RegistrationStatus) (int64, error)
}
