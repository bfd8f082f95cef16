package models

import "time"

type ResetRequestStatus string

const (
	ResetPending  ResetRequestStatus = "pending"
	ResetApproved ResetRequestStatus = "approved"
	ResetRejected ResetRequestStatus = "rejected"
)

// PasswordResetRequest is an organizer's request for an admin-issued password
// reset. The partial unique index allows at most one pending request per
// organizer while keeping resolved history.
type PasswordResetRequest struct {
	ID          uint               `json:"id" gorm:"primaryKey"`
	OrganizerID string             `json:"organizer_id" gorm:"not null;size:255;index:idx_reset_pending,unique,where:status = 'pending'"`
	Status      ResetRequestStatus `json:"status" gorm:"not null;size:20;default:pending;index:idx_reset_pending,unique,where:status = 'pending'"`

	ResolvedBy *string    `json:"resolved_by" gorm:"size:255"`
	ResolvedAt *time.Time `json:"resolved_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Organizer User `json:"organizer" gorm:"foreignKey:OrganizerID"`
}

func (PasswordResetRequest) TableName() string {
	return "password_reset_requests"
}
