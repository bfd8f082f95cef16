package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
)

type FeedbackPostgreSQL struct {
	db *gorm.DB
}

func NewFeedbackPostgreSQL(db *gorm.DB) repositories.FeedbackRepository {
	return &FeedbackPostgreSQL{db: db}
}

func (f *FeedbackPostgreSQL) Create(ctx context.Context, tx *gorm.DB, feedback *models.Feedback) error {
	db := f.getDB(tx)
	if err := db.WithContext(ctx).Create(feedback).Error; err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

func (f *FeedbackPostgreSQL) GetByEventAndParticipant(ctx context.Context, tx *gorm.DB, eventID uint, participantID string) (*models.Feedback, error) {
	db := f.getDB(tx)
	var feedback models.Feedback
	err := db.WithContext(ctx).
		Where("event_id = ? AND participant_id = ?", eventID, participantID).
		First(&feedback).Error
	if err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (f *FeedbackPostgreSQL) ListByEvent(ctx context.Context, tx *gorm.DB, eventID uint, filters repositories.FeedbackFilters) ([]*models.Feedback, int64, error) {
	db := f.getDB(tx)
	var feedbacks []*models.Feedback
	var total int64

	query := db.WithContext(ctx).Model(&models.Feedback{}).Where("event_id = ?", eventID)
	if filters.MinRating != nil {
		query = query.Where("rating >= ?", *filters.MinRating)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&feedbacks).Error; err != nil {
		return nil, 0, err
	}

	return feedbacks, total, nil
}

func (f *FeedbackPostgreSQL) GetEventRating(ctx context.Context, tx *gorm.DB, eventID uint) (float64, int64, error) {
	db := f.getDB(tx)

	type ratingRow struct {
		Average float64
		Count   int64
	}

	var row ratingRow
	err := db.WithContext(ctx).
		Model(&models.Feedback{}).
		Where("event_id = ?", eventID).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	return row.Average, row.Count, nil
}

func (f *FeedbackPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return f.db
}
