package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/UniFest-2025/event-service/internal/cache"
	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
)

type EventPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewEventPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.EventRepository {
	return &EventPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

var eventSortColumns = map[string]bool{
	"created_at": true,
	"name":       true,
	"starts_at":  true,
	"ends_at":    true,
}

func (e *EventPostgreSQL) Create(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	db := e.getDB(tx)
	if err := db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (e *EventPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	db := e.getDB(tx)

	// Skip the cache inside transactions so reads see uncommitted writes
	if tx != nil {
		var event models.Event
		if err := db.WithContext(ctx).First(&event, id).Error; err != nil {
			return nil, err
		}
		return &event, nil
	}

	cacheKey := fmt.Sprintf("id:%d", id)
	var event models.Event

	err := e.cacheManager.Event.CacheOrExecute(ctx, cacheKey, &event, cache.EventCacheConfig.TTL, func() (interface{}, error) {
		var dbEvent models.Event
		if err := db.WithContext(ctx).First(&dbEvent, id).Error; err != nil {
			return nil, err
		}
		return &dbEvent, nil
	})
	if err != nil {
		return nil, err
	}

	return &event, nil
}

func (e *EventPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	db := e.getDB(tx)

	var event models.Event
	if err := db.WithContext(ctx).
		Preload("Creator").
		First(&event, id).Error; err != nil {
		return nil, err
	}

	count, err := e.helpers.CountActiveRegistrations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count registrations: %w", err)
	}
	event.RegisteredCount = int(count)

	return &event, nil
}

func (e *EventPostgreSQL) Update(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	db := e.getDB(tx)
	if err := db.WithContext(ctx).Save(event).Error; err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	cache.InvalidateEventCache(ctx, e.cacheManager, event.ID, event.CreatedBy)
	return nil
}

func (e *EventPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := e.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Event{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	cache.SafeDelete(ctx, e.cacheManager.Event, fmt.Sprintf("id:%d", id))
	cache.SafeInvalidatePattern(ctx, e.cacheManager.Event, "list:*")
	return nil
}

func (e *EventPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.EventFilters) ([]*models.Event, int64, error) {
	db := e.getDB(tx)
	var events []*models.Event
	var total int64

	query := db.WithContext(ctx).Model(&models.Event{})
	query = e.helpers.ApplyEventFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = e.helpers.ApplyPagination(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset, eventSortColumns)

	if err := query.Preload("Creator").Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

func (e *EventPostgreSQL) GetByOrganizer(ctx context.Context, tx *gorm.DB, organizerID string, filters repositories.EventFilters) ([]*models.Event, int64, error) {
	filters.CreatedBy = &organizerID
	return e.List(ctx, tx, filters)
}

func (e *EventPostgreSQL) Search(ctx context.Context, tx *gorm.DB, query string, filters repositories.EventFilters) ([]*models.Event, int64, error) {
	filters.Search = query
	return e.List(ctx, tx, filters)
}

func (e *EventPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.EventStatus) error {
	db := e.getDB(tx)

	result := db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update event status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	cache.SafeDelete(ctx, e.cacheManager.Event, fmt.Sprintf("id:%d", id))
	cache.SafeInvalidatePattern(ctx, e.cacheManager.Event, "list:*")
	return nil
}

// DecrementStock takes quantity units off the shelf with a single conditional
// update. Two concurrent buyers of the last unit resolve to one winner; the
// loser sees false with no row written.
func (e *EventPostgreSQL) DecrementStock(ctx context.Context, tx *gorm.DB, id uint, quantity int) (bool, error) {
	db := e.getDB(tx)

	result := db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ? AND item_stock >= ?", id, quantity).
		Update("item_stock", gorm.Expr("item_stock - ?", quantity))
	if result.Error != nil {
		return false, fmt.Errorf("failed to decrement stock: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		cache.SafeDelete(ctx, e.cacheManager.Event, fmt.Sprintf("id:%d", id))
	}

	return result.RowsAffected > 0, nil
}

func (e *EventPostgreSQL) IncrementStock(ctx context.Context, tx *gorm.DB, id uint, quantity int) error {
	db := e.getDB(tx)

	result := db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", id).
		Update("item_stock", gorm.Expr("item_stock + ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to restock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	cache.SafeDelete(ctx, e.cacheManager.Event, fmt.Sprintf("id:%d", id))
	return nil
}

func (e *EventPostgreSQL) ExistsByName(ctx context.Context, tx *gorm.DB, name string, creatorID string, excludeID *uint) (bool, error) {
	db := e.getDB(tx)

	query := db.WithContext(ctx).
		Model(&models.Event{}).
		Where("name = ? AND created_by = ?", name, creatorID)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (e *EventPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return e.db
}
