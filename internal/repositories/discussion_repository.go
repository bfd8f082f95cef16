package repositories

import (
	"context"

	"github.com/UniFest-2025/event-service/internal/models"
	"gorm.io/gorm"
)

// DiscussionRepository interface for discussion-board operations
type DiscussionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, message *models.DiscussionMessage) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.DiscussionMessage, error)
	Update(ctx context.Context, tx *gorm.DB, message *models.DiscussionMessage) error

	// ListByEvent returns the flat message rows ordered by creation time.
	// Soft-deleted rows are always included so threads keep their shape.
	ListByEvent(ctx context.Context, tx *gorm.DB, eventID uint) ([]*models.DiscussionMessage, error)
	ListPinnedByEvent(ctx context.Context, tx *gorm.DB, eventID uint) ([]*models.DiscussionMessage, error)
	CountByEvent(ctx context.Context, tx *gorm.DB, eventID uint) (int64, error)
}

// FeedbackRepository interface for post-event feedback operations
type FeedbackRepository interface {
	Create(ctx context.Context, tx *gorm.DB, feedback *models.Feedback) error
	GetByEventAndParticipant(ctx context.Context, tx *gorm.DB, eventID uint, participantID string) (*models.Feedback, error)
	ListByEvent(ctx context.Context, tx *gorm.DB, eventID uint, filters FeedbackFilters) ([]*models.Feedback, int64, error)
	GetEventRating(ctx context.Context, tx *gorm.DB, eventID uint) (average float64, count int64, err error)
}

// PasswordResetRepository interface for the organizer reset queue
type PasswordResetRepository interface {
	Create(ctx context.Context, tx *gorm.DB, request *models.PasswordResetRequest) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.PasswordResetRequest, error)
	GetPendingByOrganizer(ctx context.Context, tx *gorm.DB, organizerID string) (*models.PasswordResetRequest, error)
	List(ctx context.Context, tx *gorm.DB, filters ResetRequestFilters) ([]*models.PasswordResetRequest, int64, error)
	Update(ctx context.Context, tx *gorm.DB, request *models.PasswordResetRequest) error
	DeleteByOrganizer(ctx context.Context, tx *gorm.DB, organizerID string) error
}
