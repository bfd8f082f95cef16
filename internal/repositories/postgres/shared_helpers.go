package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
	"gorm.io/gorm"
)

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// activeRegistrationStatuses are the statuses that hold a capacity slot.
var activeRegistrationStatuses = []models.RegistrationStatus{
	models.RegistrationRegistered,
	models.RegistrationPendingApproval,
}

// CountActiveRegistrations counts capacity-holding registrations for an event
func (h *SharedHelpers) CountActiveRegistrations(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	err := h.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("event_id = ? AND status IN ?", eventID, activeRegistrationStatuses).
		Count(&count).Error
	return count, err
}

// GetEventBasicInfo gets the columns the write paths gate on
func (h *SharedHelpers) GetEventBasicInfo(ctx context.Context, eventID uint) (*models.Event, error) {
	var event models.Event
	err := h.db.WithContext(ctx).
		Select("id, status, event_type, eligibility, registration_deadline, registration_limit, item_stock, item_purchase_limit, created_by").
		First(&event, eventID).Error
	return &event, err
}

// ApplyEventFilters applies common filters to event queries
func (h *SharedHelpers) ApplyEventFilters(query *gorm.DB, filters repositories.EventFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.EventType != nil {
		query = query.Where("event_type = ?", *filters.EventType)
	}
	if filters.Eligibility != nil {
		query = query.Where("eligibility = ?", *filters.Eligibility)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Tag != nil {
		query = query.Where("event_tags @> ?", fmt.Sprintf(`["%s"]`, *filters.Tag))
	}
	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filters.DateFrom != nil {
		query = query.Where("starts_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("starts_at <= ?", *filters.DateTo)
	}
	return query
}

// ApplyRegistrationFilters applies common filters to registration queries
func (h *SharedHelpers) ApplyRegistrationFilters(query *gorm.DB, filters repositories.RegistrationFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.MerchPaymentStatus != nil {
		query = query.Where("merch_payment_status = ?", *filters.MerchPaymentStatus)
	}
	if filters.EventID != nil {
		query = query.Where("event_id = ?", *filters.EventID)
	}
	if filters.ParticipantID != nil {
		query = query.Where("participant_id = ?", *filters.ParticipantID)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

// ApplyPagination applies limit/offset and sorting with a whitelist of
// sortable columns.
func (h *SharedHelpers) ApplyPagination(query *gorm.DB, sortBy, sortOrder string, limit, offset int, allowed map[string]bool) *gorm.DB {
	column := "created_at"
	if sortBy != "" && allowed[sortBy] {
		column = sortBy
	}

	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}

	query = query.Order(fmt.Sprintf("%s %s", column, direction))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}
