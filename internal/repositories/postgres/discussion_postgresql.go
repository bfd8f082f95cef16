package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
)

type DiscussionPostgreSQL struct {
	db *gorm.DB
}

func NewDiscussionPostgreSQL(db *gorm.DB) repositories.DiscussionRepository {
	return &DiscussionPostgreSQL{db: db}
}

func (d *DiscussionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, message *models.DiscussionMessage) error {
	db := d.getDB(tx)
	if err := db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (d *DiscussionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.DiscussionMessage, error) {
	db := d.getDB(tx)
	var message models.DiscussionMessage
	if err := db.WithContext(ctx).Preload("Author").First(&message, id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (d *DiscussionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, message *models.DiscussionMessage) error {
	db := d.getDB(tx)
	if err := db.WithContext(ctx).Save(message).Error; err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	return nil
}

func (d *DiscussionPostgreSQL) ListByEvent(ctx context.Context, tx *gorm.DB, eventID uint) ([]*models.DiscussionMessage, error) {
	db := d.getDB(tx)
	var messages []*models.DiscussionMessage
	if err := db.WithContext(ctx).
		Preload("Author").
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (d *DiscussionPostgreSQL) ListPinnedByEvent(ctx context.Context, tx *gorm.DB, eventID uint) ([]*models.DiscussionMessage, error) {
	db := d.getDB(tx)
	var messages []*models.DiscussionMessage
	if err := db.WithContext(ctx).
		Preload("Author").
		Where("event_id = ? AND is_pinned = ? AND is_deleted = ?", eventID, true, false).
		Order("created_at DESC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (d *DiscussionPostgreSQL) CountByEvent(ctx context.Context, tx *gorm.DB, eventID uint) (int64, error) {
	db := d.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.DiscussionMessage{}).
		Where("event_id = ? AND is_deleted = ?", eventID, false).
		Count(&count).Error
	return count, err
}

func (d *DiscussionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return d.db
}
