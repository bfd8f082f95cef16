package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
)

type PasswordResetPostgreSQL struct {
	db *gorm.DB
}

func NewPasswordResetPostgreSQL(db *gorm.DB) repositories.PasswordResetRepository {
	return &PasswordResetPostgreSQL{db: db}
}

func (p *PasswordResetPostgreSQL) Create(ctx context.Context, tx *gorm.DB, request *models.PasswordResetRequest) error {
	db := p.getDB(tx)
	if err := db.WithContext(ctx).Create(request).Error; err != nil {
		return fmt.Errorf("failed to create reset request: %w", err)
	}
	return nil
}

func (p *PasswordResetPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.PasswordResetRequest, error) {
	db := p.getDB(tx)
	var request models.PasswordResetRequest
	if err := db.WithContext(ctx).Preload("Organizer").First(&request, id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (p *PasswordResetPostgreSQL) GetPendingByOrganizer(ctx context.Context, tx *gorm.DB, organizerID string) (*models.PasswordResetRequest, error) {
	db := p.getDB(tx)
	var request models.PasswordResetRequest
	err := db.WithContext(ctx).
		Where("organizer_id = ? AND status = ?", organizerID, models.ResetPending).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (p *PasswordResetPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ResetRequestFilters) ([]*models.PasswordResetRequest, int64, error) {
	db := p.getDB(tx)
	var requests []*models.PasswordResetRequest
	var total int64

	query := db.WithContext(ctx).Model(&models.PasswordResetRequest{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at ASC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Preload("Organizer").Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (p *PasswordResetPostgreSQL) Update(ctx context.Context, tx *gorm.DB, request *models.PasswordResetRequest) error {
	db := p.getDB(tx)
	if err := db.WithContext(ctx).Save(request).Error; err != nil {
		return fmt.Errorf("failed to update reset request: %w", err)
	}
	return nil
}

func (p *PasswordResetPostgreSQL) DeleteByOrganizer(ctx context.Context, tx *gorm.DB, organizerID string) error {
	db := p.getDB(tx)
	err := db.WithContext(ctx).
		Where("organizer_id = ?", organizerID).
		Delete(&models.PasswordResetRequest{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete reset requests: %w", err)
	}
	return nil
}

func (p *PasswordResetPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}
