package repositories

import (
	"context"

	"github.com/UniFest-2025/event-service/internal/models"
	"gorm.io/gorm"
)

// EventRepository interface for event-specific operations
type EventRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, event *models.Event) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) // Include creator and live registration count
	Update(ctx context.Context, tx *gorm.DB, event *models.Event) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters EventFilters) ([]*models.Event, int64, error)
	GetByOrganizer(ctx context.Context, tx *gorm.DB, organizerID string, filters EventFilters) ([]*models.Event, int64, error)
	Search(ctx context.Context, tx *gorm.DB, query string, filters EventFilters) ([]*models.Event, int64, error)

	// Lifecycle operations
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.EventStatus) error

	// Stock ledger. DecrementStock reports false when the remaining stock
	// would go negative; nothing is written in that case.
	DecrementStock(ctx context.Context, tx *gorm.DB, id uint, quantity int) (bool, error)
	IncrementStock(ctx context.Context, tx *gorm.DB, id uint, quantity int) error

	// Validation and checks
	ExistsByName(ctx context.Context, tx *gorm.DB, name string, creatorID string, excludeID *uint) (bool, error)
}
