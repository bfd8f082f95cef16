package repositories

import (
	"time"

	"github.com/UniFest-2025/event-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type EventFilters struct {
	Status      *models.EventStatus `json:"status"`
	EventType   *models.EventType   `json:"event_type"`
	Eligibility *models.Eligibility `json:"eligibility"`
	CreatedBy   *string             `json:"created_by"`
	Tag         *string             `json:"tag"`
	Search      string              `json:"search"`
	DateFrom    *time.Time          `json:"date_from"`
	DateTo      *time.Time          `json:"date_to"`
	Limit       int                 `json:"limit"`
	Offset      int                 `json:"offset"`
	SortBy      string              `json:"sort_by"`    // "created_at", "name", "starts_at"
	SortOrder   string              `json:"sort_order"` // "asc", "desc"
}

type RegistrationFilters struct {
	Status             *models.RegistrationStatus `json:"status"`
	MerchPaymentStatus *models.MerchPaymentStatus `json:"merch_payment_status"`
	EventID            *uint                      `json:"event_id"`
	ParticipantID      *string                    `json:"participant_id"`
	DateFrom           *time.Time                 `json:"date_from"`
	DateTo             *time.Time                 `json:"date_to"`
	Limit              int                        `json:"limit"`
	Offset             int                        `json:"offset"`
	SortBy             string                     `json:"sort_by"`
	SortOrder          string                     `json:"sort_order"`
}

type FeedbackFilters struct {
	MinRating *int `json:"min_rating"`
	Limit     int  `json:"limit"`
	Offset    int  `json:"offset"`
}

type ResetRequestFilters struct {
	Status *models.ResetRequestStatus `json:"status"`
	Limit  int                        `json:"limit"`
	Offset int                        `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type EventStats struct {
	TotalRegistrations     int64   `json:"total_registrations"`
	ActiveRegistrations    int64   `json:"active_registrations"`
	CancelledRegistrations int64   `json:"cancelled_registrations"`
	PendingOrders          int64   `json:"pending_orders"`
	AttendanceCount        int64   `json:"attendance_count"`
	PaidCount              int64   `json:"paid_count"`
	Revenue                float64 `json:"revenue"`
	TeamCount              int64   `json:"team_count"`
	StockRemaining         int     `json:"stock_remaining"`
	UnitsSold              int64   `json:"units_sold"`
	AverageRating          float64 `json:"average_rating"`
	FeedbackCount          int64   `json:"feedback_count"`
}

type OrganizerStats struct {
	TotalEvents        int64 `json:"total_events"`
	DraftEvents        int64 `json:"draft_events"`
	PublishedEvents    int64 `json:"published_events"`
	OngoingEvents      int64 `json:"ongoing_events"`
	ClosedEvents       int64 `json:"closed_events"`
	TotalRegistrations int64 `json:"total_registrations"`
}

// PlatformStats is the admin-facing rollup across the whole platform.
type PlatformStats struct {
	TotalEvents         int64   `json:"total_events"`
	PublishedEvents     int64   `json:"published_events"`
	TotalRegistrations  int64   `json:"total_registrations"`
	ActiveRegistrations int64   `json:"active_registrations"`
	TicketsIssued       int64   `json:"tickets_issued"`
	TicketsUsed         int64   `json:"tickets_used"`
	PendingOrders       int64   `json:"pending_orders"`
	PendingResets       int64   `json:"pending_resets"`
	TotalRevenue        float64 `json:"total_revenue"`
}

// TrendingEvent is one row of the trending board, ranked by registrations
// created inside the trailing window.
type TrendingEvent struct {
	EventID             uint   `json:"event_id"`
	Name                string `json:"name"`
	RecentRegistrations int64  `json:"recent_registrations"`
}

// AttendanceRow is one flattened export row for the attendance sheet.
type AttendanceRow struct {
	RegistrationID  uint       `json:"registration_id"`
	ParticipantID   string     `json:"participant_id"`
	ParticipantName string     `json:"participant_name"`
	Email           string     `json:"email"`
	TeamName        string     `json:"team_name"`
	Status          string     `json:"status"`
	Attendance      bool       `json:"attendance"`
	MerchSize       string     `json:"merch_size"`
	MerchColor      string     `json:"merch_color"`
	MerchQuantity   int        `json:"merch_quantity"`
	RegisteredAt    time.Time  `json:"registered_at"`
	CheckedInAt     *time.Time `json:"checked_in_at"`
}
