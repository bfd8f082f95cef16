package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/UniFest-2025/event-service/internal/cache"
	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
)

type TicketPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewTicketPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.TicketRepository {
	return &TicketPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (t *TicketPostgreSQL) Create(ctx context.Context, tx *gorm.DB, ticket *models.Ticket) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).Create(ticket).Error; err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

func (t *TicketPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Ticket, error) {
	db := t.getDB(tx)
	var ticket models.Ticket
	if err := db.WithContext(ctx).First(&ticket, id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (t *TicketPostgreSQL) GetByTicketID(ctx context.Context, tx *gorm.DB, ticketID string) (*models.Ticket, error) {
	db := t.getDB(tx)
	var ticket models.Ticket
	if err := db.WithContext(ctx).Where("ticket_id = ?", ticketID).First(&ticket).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (t *TicketPostgreSQL) GetByTicketIDWithDetails(ctx context.Context, tx *gorm.DB, ticketID string) (*models.Ticket, error) {
	db := t.getDB(tx)
	var ticket models.Ticket
	if err := db.WithContext(ctx).
		Preload("Event").
		Preload("Registration").
		Preload("Participant").
		Where("ticket_id = ?", ticketID).
		First(&ticket).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (t *TicketPostgreSQL) GetByRegistration(ctx context.Context, tx *gorm.DB, registrationID uint) (*models.Ticket, error) {
	db := t.getDB(tx)
	var ticket models.Ticket
	if err := db.WithContext(ctx).Where("registration_id = ?", registrationID).First(&ticket).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (t *TicketPostgreSQL) Update(ctx context.Context, tx *gorm.DB, ticket *models.Ticket) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).Save(ticket).Error; err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
	}

	cache.SafeDelete(ctx, t.cacheManager.Fast, fmt.Sprintf("ticket:%s", ticket.TicketID))
	return nil
}

// MarkUsed consumes the ticket with a conditional update. Two gate stations
// scanning the same code race on the is_used guard and exactly one wins.
func (t *TicketPostgreSQL) MarkUsed(ctx context.Context, tx *gorm.DB, ticketID string, usedAt time.Time, auditLog datatypes.JSON) (bool, error) {
	db := t.getDB(tx)

	result := db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("ticket_id = ? AND is_used = ?", ticketID, false).
		Updates(map[string]interface{}{
			"is_used":   true,
			"used_at":   usedAt,
			"audit_log": auditLog,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark ticket used: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		cache.SafeDelete(ctx, t.cacheManager.Fast, fmt.Sprintf("ticket:%s", ticketID))
	}

	return result.RowsAffected > 0, nil
}

func (t *TicketPostgreSQL) ListByEvent(ctx context.Context, tx *gorm.DB, eventID uint) ([]*models.Ticket, error) {
	db := t.getDB(tx)
	var tickets []*models.Ticket
	if err := db.WithContext(ctx).
		Preload("Participant").
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

func (t *TicketPostgreSQL) DeleteByEvent(ctx context.Context, tx *gorm.DB, eventID uint) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&models.Ticket{}).Error; err != nil {
		return fmt.Errorf("failed to delete tickets for event %d: %w", eventID, err)
	}
	cache.SafeInvalidatePattern(ctx, t.cacheManager.Fast, fmt.Sprintf("event:%d:*", eventID))
	return nil
}

func (t *TicketPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return t.db
}
