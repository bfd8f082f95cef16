package repositories

import (
	"context"

	"github.com/UniFest-2025/event-service/internal/models"
)

// UserFilters defines filters for user queries
type UserFilters struct {
	Query  string           // Search query for name or email
	Role   *models.UserRole // Restrict to one role
	Limit  int              // Page size
	Offset int              // Offset for pagination
}

// UserRepository interface for identity operations. Accounts live in Casdoor;
// the service mirrors a read model and drives account administration through
// this interface.
type UserRepository interface {
	// Basic read operations
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)

	// List and search operations
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)

	// Account administration (admin creates organizers, participants self-signup)
	Create(ctx context.Context, user *models.User, password string) error
	Update(ctx context.Context, user *models.User) error
	SetDisabled(ctx context.Context, id string, disabled bool) error
	SetArchived(ctx context.Context, id string, archived bool) error
	SetPassword(ctx context.Context, id string, newPassword string) error
	Delete(ctx context.Context, id string) error

	// RemoveFollowedOrganizer prunes an organizer id from every participant's
	// followed list, part of the organizer cascade delete.
	RemoveFollowedOrganizer(ctx context.Context, organizerID string) error

	// Validation and checks
	ExistsByID(ctx context.Context, id string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	HasRole(ctx context.Context, id string, role models.UserRole) (bool, error)
}
