package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// AnalyticsRepository interface for aggregate reporting queries
type AnalyticsRepository interface {
	GetEventStats(ctx context.Context, tx *gorm.DB, eventID uint) (*EventStats, error)
	GetOrganizerStats(ctx context.Context, tx *gorm.DB, organizerID string) (*OrganizerStats, error)
	GetPlatformStats(ctx context.Context, tx *gorm.DB) (*PlatformStats, error)

	// GetTrendingEvents ranks published events by registrations created after
	// the cutoff, highest first.
	GetTrendingEvents(ctx context.Context, tx *gorm.DB, since time.Time, limit int) ([]*TrendingEvent, error)

	// GetAttendanceRows returns flattened registration rows for export.
	GetAttendanceRows(ctx context.Context, tx *gorm.DB, eventID uint) ([]*AttendanceRow, error)
}
