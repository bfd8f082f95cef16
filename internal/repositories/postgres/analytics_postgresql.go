package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/UniFest-2025/event-service/internal/cache"
	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
)

type AnalyticsPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewAnalyticsPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.AnalyticsRepository {
	return &AnalyticsPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (a *AnalyticsPostgreSQL) GetEventStats(ctx context.Context, tx *gorm.DB, eventID uint) (*repositories.EventStats, error) {
	db := a.getDB(tx)

	cacheKey := fmt.Sprintf("event:%d:summary", eventID)
	var stats repositories.EventStats

	err := a.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		return a.computeEventStats(ctx, db, eventID)
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (a *AnalyticsPostgreSQL) computeEventStats(ctx context.Context, db *gorm.DB, eventID uint) (*repositories.EventStats, error) {
	var event models.Event
	if err := db.WithContext(ctx).Select("id, item_stock, registration_fee").First(&event, eventID).Error; err != nil {
		return nil, err
	}

	stats := &repositories.EventStats{StockRemaining: event.ItemStock}

	type regRow struct {
		Status models.RegistrationStatus
		Count  int64
		Units  int64
	}
	var regRows []regRow
	err := db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("event_id = ?", eventID).
		Select("status, COUNT(*) AS count, COALESCE(SUM(merch_quantity), 0) AS units").
		Group("status").
		Scan(&regRows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate registrations: %w", err)
	}

	for _, row := range regRows {
		stats.TotalRegistrations += row.Count
		switch row.Status {
		case models.RegistrationRegistered, models.RegistrationCompleted:
			stats.ActiveRegistrations += row.Count
			stats.UnitsSold += row.Units
		case models.RegistrationPendingApproval:
			stats.PendingOrders += row.Count
		case models.RegistrationCancelled, models.RegistrationRejected:
			stats.CancelledRegistrations += row.Count
		}
	}

	err = db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("event_id = ? AND attendance = ?", eventID, true).
		Count(&stats.AttendanceCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count attendance: %w", err)
	}

	type paidRow struct {
		Count int64
		Units int64
	}
	var paid paidRow
	err = db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("event_id = ? AND payment_status = ?", eventID, models.PaymentPaid).
		Select("COUNT(*) AS count, COALESCE(SUM(GREATEST(merch_quantity, 1)), 0) AS units").
		Scan(&paid).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payments: %w", err)
	}
	stats.PaidCount = paid.Count
	stats.Revenue = event.RegistrationFee * float64(paid.Units)

	err = db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("event_id = ? AND team_name IS NOT NULL AND team_name <> '' AND status IN ?", eventID, activeRegistrationStatuses).
		Distinct("team_name").
		Count(&stats.TeamCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count teams: %w", err)
	}

	type ratingRow struct {
		Average float64
		Count   int64
	}
	var rating ratingRow
	err = db.WithContext(ctx).
		Model(&models.Feedback{}).
		Where("event_id = ?", eventID).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Scan(&rating).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	stats.AverageRating = rating.Average
	stats.FeedbackCount = rating.Count

	return stats, nil
}

func (a *AnalyticsPostgreSQL) GetOrganizerStats(ctx context.Context, tx *gorm.DB, organizerID string) (*repositories.OrganizerStats, error) {
	db := a.getDB(tx)

	cacheKey := fmt.Sprintf("organizer:%s:summary", organizerID)
	var stats repositories.OrganizerStats

	err := a.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		computed := &repositories.OrganizerStats{}

		type statusRow struct {
			Status models.EventStatus
			Count  int64
		}
		var rows []statusRow
		err := db.WithContext(ctx).
			Model(&models.Event{}).
			Where("created_by = ?", organizerID).
			Select("status, COUNT(*) AS count").
			Group("status").
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate events: %w", err)
		}

		for _, row := range rows {
			computed.TotalEvents += row.Count
			switch row.Status {
			case models.StatusDraft:
				computed.DraftEvents = row.Count
			case models.StatusPublished:
				computed.PublishedEvents = row.Count
			case models.StatusOngoing:
				computed.OngoingEvents = row.Count
			case models.StatusClosed:
				computed.ClosedEvents = row.Count
			}
		}

		err = db.WithContext(ctx).
			Model(&models.Registration{}).
			Joins("JOIN events ON events.id = registrations.event_id").
			Where("events.created_by = ? AND registrations.status IN ?", organizerID, activeRegistrationStatuses).
			Count(&computed.TotalRegistrations).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count registrations: %w", err)
		}

		return computed, nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (a *AnalyticsPostgreSQL) GetPlatformStats(ctx context.Context, tx *gorm.DB) (*repositories.PlatformStats, error) {
	db := a.getDB(tx)

	var stats repositories.PlatformStats
	err := a.cacheManager.Stats.CacheOrExecute(ctx, "platform:summary", &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		computed := &repositories.PlatformStats{}

		if err := db.WithContext(ctx).Model(&models.Event{}).Count(&computed.TotalEvents).Error; err != nil {
			return nil, fmt.Errorf("failed to count events: %w", err)
		}
		err := db.WithContext(ctx).
			Model(&models.Event{}).
			Where("status IN ?", []models.EventStatus{models.StatusPublished, models.StatusOngoing}).
			Count(&computed.PublishedEvents).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count published events: %w", err)
		}

		if err := db.WithContext(ctx).Model(&models.Registration{}).Count(&computed.TotalRegistrations).Error; err != nil {
			return nil, fmt.Errorf("failed to count registrations: %w", err)
		}
		err = db.WithContext(ctx).
			Model(&models.Registration{}).
			Where("status IN ?", activeRegistrationStatuses).
			Count(&computed.ActiveRegistrations).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count active registrations: %w", err)
		}
		err = db.WithContext(ctx).
			Model(&models.Registration{}).
			Where("status = ?", models.RegistrationPendingApproval).
			Count(&computed.PendingOrders).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count pending orders: %w", err)
		}

		if err := db.WithContext(ctx).Model(&models.Ticket{}).Count(&computed.TicketsIssued).Error; err != nil {
			return nil, fmt.Errorf("failed to count tickets: %w", err)
		}
		err = db.WithContext(ctx).
			Model(&models.Ticket{}).
			Where("is_used = ?", true).
			Count(&computed.TicketsUsed).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count used tickets: %w", err)
		}

		err = db.WithContext(ctx).
			Model(&models.PasswordResetRequest{}).
			Where("status = ?", models.ResetPending).
			Count(&computed.PendingResets).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count pending resets: %w", err)
		}

		err = db.WithContext(ctx).
			Model(&models.Registration{}).
			Joins("JOIN events ON events.id = registrations.event_id").
			Where("registrations.payment_status = ?", models.PaymentPaid).
			Select("COALESCE(SUM(events.registration_fee * GREATEST(registrations.merch_quantity, 1)), 0)").
			Scan(&computed.TotalRevenue).Error
		if err != nil {
			return nil, fmt.Errorf("failed to sum revenue: %w", err)
		}

		return computed, nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (a *AnalyticsPostgreSQL) GetTrendingEvents(ctx context.Context, tx *gorm.DB, since time.Time, limit int) ([]*repositories.TrendingEvent, error) {
	db := a.getDB(tx)

	cacheKey := fmt.Sprintf("top:%d", limit)
	var trending []*repositories.TrendingEvent

	err := a.cacheManager.Trending.CacheOrExecute(ctx, cacheKey, &trending, cache.TrendingCacheConfig.TTL, func() (interface{}, error) {
		var rows []*repositories.TrendingEvent
		err := db.WithContext(ctx).
			Model(&models.Registration{}).
			Joins("JOIN events ON events.id = registrations.event_id").
			Where("registrations.created_at >= ? AND registrations.status IN ? AND events.status IN ?",
				since, activeRegistrationStatuses,
				[]models.EventStatus{models.StatusPublished, models.StatusOngoing}).
			Select("events.id AS event_id, events.name AS name, COUNT(*) AS recent_registrations").
			Group("events.id, events.name").
			Order("recent_registrations DESC").
			Limit(limit).
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to rank trending events: %w", err)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}

	return trending, nil
}

func (a *AnalyticsPostgreSQL) GetAttendanceRows(ctx context.Context, tx *gorm.DB, eventID uint) ([]*repositories.AttendanceRow, error) {
	db := a.getDB(tx)

	var registrations []*models.Registration
	err := db.WithContext(ctx).
		Preload("Participant").
		Where("event_id = ? AND status IN ?", eventID, countedStatuses).
		Order("created_at ASC").
		Find(&registrations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load registrations: %w", err)
	}

	var tickets []*models.Ticket
	err = db.WithContext(ctx).
		Select("registration_id, used_at").
		Where("event_id = ? AND is_used = ?", eventID, true).
		Find(&tickets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load tickets: %w", err)
	}

	checkins := make(map[uint]*time.Time, len(tickets))
	for _, ticket := range tickets {
		checkins[ticket.RegistrationID] = ticket.UsedAt
	}

	rows := make([]*repositories.AttendanceRow, 0, len(registrations))
	for _, reg := range registrations {
		row := &repositories.AttendanceRow{
			RegistrationID:  reg.ID,
			ParticipantID:   reg.ParticipantID,
			ParticipantName: reg.Participant.FullName,
			Email:           reg.Participant.Email,
			Status:          string(reg.Status),
			Attendance:      reg.Attendance,
			MerchQuantity:   reg.MerchQuantity,
			RegisteredAt:    reg.CreatedAt,
			CheckedInAt:     checkins[reg.ID],
		}
		if reg.TeamName != nil {
			row.TeamName = *reg.TeamName
		}
		if reg.MerchSize != nil {
			row.MerchSize = *reg.MerchSize
		}
		if reg.MerchColor != nil {
			row.MerchColor = *reg.MerchColor
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func (a *AnalyticsPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}
