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

type RegistrationPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewRegistrationPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.RegistrationRepository {
	return &RegistrationPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

var registrationSortColumns = map[string]bool{
	"created_at": true,
	"status":     true,
}

// countedStatuses hold a capacity slot or a stock reservation.
var countedStatuses = []models.RegistrationStatus{
	models.RegistrationRegistered,
	models.RegistrationPendingApproval,
	models.RegistrationCompleted,
}

func (r *RegistrationPostgreSQL) Create(ctx context.Context, tx *gorm.DB, registration *models.Registration) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(registration).Error; err != nil {
		return fmt.Errorf("failed to create registration: %w", err)
	}

	cache.InvalidateRegistrationCache(ctx, r.cacheManager, registration.EventID, registration.ParticipantID)
	return nil
}

func (r *RegistrationPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Registration, error) {
	db := r.getDB(tx)
	var registration models.Registration
	if err := db.WithContext(ctx).First(&registration, id).Error; err != nil {
		return nil, err
	}
	return &registration, nil
}

func (r *RegistrationPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Registration, error) {
	db := r.getDB(tx)
	var registration models.Registration
	if err := db.WithContext(ctx).
		Preload("Event").
		Preload("Participant").
		First(&registration, id).Error; err != nil {
		return nil, err
	}
	return &registration, nil
}

func (r *RegistrationPostgreSQL) Update(ctx context.Context, tx *gorm.DB, registration *models.Registration) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(registration).Error; err != nil {
		return fmt.Errorf("failed to update registration: %w", err)
	}

	cache.InvalidateRegistrationCache(ctx, r.cacheManager, registration.EventID, registration.ParticipantID)
	return nil
}

func (r *RegistrationPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)
	return db.WithContext(ctx).Delete(&models.Registration{}, id).Error
}

func (r *RegistrationPostgreSQL) DeleteByEvent(ctx context.Context, tx *gorm.DB, eventID uint) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&models.Registration{}).Error; err != nil {
		return fmt.Errorf("failed to delete registrations for event %d: %w", eventID, err)
	}
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Registration, fmt.Sprintf("event:%d:*", eventID))
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Registration, "participant:*")
	return nil
}

func (r *RegistrationPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.RegistrationFilters) ([]*models.Registration, int64, error) {
	db := r.getDB(tx)
	var registrations []*models.Registration
	var total int64

	query := db.WithContext(ctx).Model(&models.Registration{})
	query = r.helpers.ApplyRegistrationFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.helpers.ApplyPagination(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset, registrationSortColumns)

	if err := query.Preload("Event").Preload("Participant").Find(&registrations).Error; err != nil {
		return nil, 0, err
	}

	return registrations, total, nil
}

func (r *RegistrationPostgreSQL) GetByEvent(ctx context.Context, tx *gorm.DB, eventID uint, filters repositories.RegistrationFilters) ([]*models.Registration, int64, error) {
	filters.EventID = &eventID
	return r.List(ctx, tx, filters)
}

func (r *RegistrationPostgreSQL) GetByParticipant(ctx context.Context, tx *gorm.DB, participantID string, filters repositories.RegistrationFilters) ([]*models.Registration, int64, error) {
	filters.ParticipantID = &participantID
	return r.List(ctx, tx, filters)
}

func (r *RegistrationPostgreSQL) GetActiveByEventAndParticipant(ctx context.Context, tx *gorm.DB, eventID uint, participantID string) (*models.Registration, error) {
	db := r.getDB(tx)
	var registration models.Registration
	err := db.WithContext(ctx).
		Where("event_id = ? AND participant_id = ? AND status IN ?", eventID, participantID, activeRegistrationStatuses).
		Order("created_at DESC").
		First(&registration).Error
	if err != nil {
		return nil, err
	}
	return &registration, nil
}

func (r *RegistrationPostgreSQL) CountActiveByEvent(ctx context.Context, tx *gorm.DB, eventID uint) (int64, error) {
	db := r.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("event_id = ? AND status IN ?", eventID, activeRegistrationStatuses).
		Count(&count).Error
	return count, err
}

// SumQuantityByParticipant totals the units a participant has bought or still
// has pending for one event. Cancelled and rejected rows do not count.
func (r *RegistrationPostgreSQL) SumQuantityByParticipant(ctx context.Context, tx *gorm.DB, eventID uint, participantID string) (int, error) {
	db := r.getDB(tx)
	var total int64
	err := db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("event_id = ? AND participant_id = ? AND status IN ?", eventID, participantID, countedStatuses).
		Select("COALESCE(SUM(merch_quantity), 0)").
		Scan(&total).Error
	return int(total), err
}

func (r *RegistrationPostgreSQL) BulkUpdateStatusByEvent(ctx context.Context, tx *gorm.DB, eventID uint, from []models.RegistrationStatus, to models.RegistrationStatus) (int64, error) {
	db := r.getDB(tx)

	result := db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("event_id = ? AND status IN ?", eventID, from).
		Update("status", to)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to bulk update registrations: %w", result.Error)
	}

	cache.SafeInvalidatePattern(ctx, r.cacheManager.Registration, fmt.Sprintf("event:%d:*", eventID))
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Registration, "participant:*")

	return result.RowsAffected, nil
}

func (r *RegistrationPostgreSQL) BulkUpdateStatusByParticipant(ctx context.Context, tx *gorm.DB, eventID uint, participantID string, from []models.RegistrationStatus, to models.RegistrationStatus) (int64, error) {
	db := r.getDB(tx)

	result := db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("event_id = ? AND participant_id = ? AND status IN ?", eventID, participantID, from).
		Update("status", to)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to bulk update registrations: %w", result.Error)
	}

	cache.InvalidateRegistrationCache(ctx, r.cacheManager, eventID, participantID)

	return result.RowsAffected, nil
}

func (r *RegistrationPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
