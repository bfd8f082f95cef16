package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRole string
type Role = UserRole // Alias for compatibility

const (
	RoleParticipant UserRole = "participant"
	RoleOrganizer   UserRole = "organizer"
	RoleAdmin       UserRole = "admin"
)

type InstitutionType string

const (
	InstitutionIIIT  InstitutionType = "IIIT"
	InstitutionOther InstitutionType = "Other"
)

type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	FullName string   `json:"full_name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role     UserRole `json:"role" gorm:"not null;size:20;index"`

	// Account flags. Archive implies disable; both gate login.
	IsDisabled bool `json:"is_disabled" gorm:"not null;default:false"`
	IsArchived bool `json:"is_archived" gorm:"not null;default:false"`

	// Participant profile
	InstitutionType    InstitutionType `json:"institution_type" gorm:"size:20"`
	Interests          datatypes.JSON  `json:"interests" gorm:"type:jsonb"`           // []string
	FollowedOrganizers datatypes.JSON  `json:"followed_organizers" gorm:"type:jsonb"` // []string of organizer IDs

	// Organizer profile
	OrgName      *string `json:"org_name" gorm:"size:200"`
	OrgCategory  *string `json:"org_category" gorm:"size:100"`
	ContactEmail *string `json:"contact_email" gorm:"size:255"`
	WebhookURL   *string `json:"webhook_url" gorm:"size:500"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// CanLogin reports whether the account is allowed to authenticate.
func (u *User) CanLogin() bool {
	return !u.IsDisabled && !u.IsArchived
}
