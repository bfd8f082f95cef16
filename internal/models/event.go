package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EventStatus string

const (
	StatusDraft     EventStatus = "draft"
	StatusPublished EventStatus = "published"
	StatusOngoing   EventStatus = "ongoing"
	StatusClosed    EventStatus = "closed"
)

type EventType string

const (
	EventNormal      EventType = "Normal"
	EventMerchandise EventType = "Merchandise"
)

type Eligibility string

const (
	EligibilityAll  Eligibility = "All"
	EligibilityIIIT Eligibility = "IIIT"
)

// CustomFormField is one organizer-defined registration field. The ordered
// list is stored on Event.CustomForm as JSONB and is frozen once the event
// has any registration.
type CustomFormField struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Type     string   `json:"type"` // text, dropdown, checkbox, file
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

const (
	FormFieldText     = "text"
	FormFieldDropdown = "dropdown"
	FormFieldCheckbox = "checkbox"
	FormFieldFile     = "file"
)

type Event struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	Name        string      `json:"name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string     `json:"description" gorm:"type:text" validate:"omitempty,max=5000"`
	EventType   EventType   `json:"event_type" gorm:"not null;size:20;default:Normal"`
	Eligibility Eligibility `json:"eligibility" gorm:"not null;size:20;default:All"`
	Status      EventStatus `json:"status" gorm:"default:draft;index"`

	StartsAt             time.Time  `json:"starts_at" gorm:"not null"`
	EndsAt               time.Time  `json:"ends_at" gorm:"not null"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`

	// nil means unlimited.
	RegistrationLimit *int    `json:"registration_limit"`
	RegistrationFee   float64 `json:"registration_fee"`

	EventTags datatypes.JSON `json:"event_tags" gorm:"type:jsonb"` // set of strings, order irrelevant

	// Merchandise item configuration. Stock is a plain column so purchases
	// can do a conditional decrement in a single UPDATE.
	ItemSizes         datatypes.JSON `json:"item_sizes" gorm:"type:jsonb"`  // []string
	ItemColors        datatypes.JSON `json:"item_colors" gorm:"type:jsonb"` // []string
	ItemStock         int            `json:"item_stock" gorm:"not null;default:0"`
	ItemInitialStock  int            `json:"item_initial_stock" gorm:"not null;default:0"`
	ItemPurchaseLimit int            `json:"item_purchase_limit" gorm:"not null;default:0"` // 0 = unlimited

	// Ordered []CustomFormField.
	CustomForm datatypes.JSON `json:"custom_form" gorm:"type:jsonb"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Creator       User           `json:"creator" gorm:"foreignKey:CreatedBy"`
	Registrations []Registration `json:"registrations,omitempty" gorm:"foreignKey:EventID"`

	// Computed fields (not stored)
	RegisteredCount int `json:"registered_count" gorm:"-"`
}

func (Event) TableName() string {
	return "events"
}

// IsMerchandise reports whether the event sells an item rather than seats.
func (e *Event) IsMerchandise() bool {
	return e.EventType == EventMerchandise
}

// RegistrationOpen reports whether the deadline (if any) has not passed.
func (e *Event) RegistrationOpen(now time.Time) bool {
	return e.RegistrationDeadline == nil || !now.After(*e.RegistrationDeadline)
}
