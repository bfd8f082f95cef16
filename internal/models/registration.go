package models

import (
	"time"

	"gorm.io/datatypes"
)

type RegistrationStatus string

const (
	RegistrationRegistered      RegistrationStatus = "registered"
	RegistrationCancelled       RegistrationStatus = "cancelled"
	RegistrationCompleted       RegistrationStatus = "completed"
	RegistrationRejected        RegistrationStatus = "rejected"
	RegistrationPendingApproval RegistrationStatus = "pending_approval"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

type MerchPaymentStatus string

const (
	MerchPaymentNone            MerchPaymentStatus = "none"
	MerchPaymentPendingApproval MerchPaymentStatus = "pending_approval"
	MerchPaymentApproved        MerchPaymentStatus = "approved"
	MerchPaymentRejected        MerchPaymentStatus = "rejected"
)

type Registration struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	EventID       uint   `json:"event_id" gorm:"not null;index:idx_reg_event_participant"`
	ParticipantID string `json:"participant_id" gorm:"not null;size:255;index:idx_reg_event_participant"`

	Status             RegistrationStatus `json:"status" gorm:"not null;size:20;index;default:registered"`
	PaymentStatus      PaymentStatus      `json:"payment_status" gorm:"not null;size:20;default:pending"`
	MerchPaymentStatus MerchPaymentStatus `json:"merch_payment_status" gorm:"not null;size:20;default:none"`

	TeamName *string `json:"team_name" gorm:"size:100"`

	// Merchandise selection
	MerchSize     *string `json:"merch_size" gorm:"size:50"`
	MerchColor    *string `json:"merch_color" gorm:"size:50"`
	MerchQuantity int     `json:"merch_quantity" gorm:"not null;default:0"`

	// map of custom form field id -> response value; file responses embed
	// {name, mime, data} with the data base64 encoded and size capped.
	FormResponses datatypes.JSON `json:"form_responses" gorm:"type:jsonb"`

	// {name, mime, data}, set only on the approval path.
	PaymentProof datatypes.JSON `json:"payment_proof,omitempty" gorm:"type:jsonb"`

	// Absent until a ticket is actually issued.
	TicketID *string `json:"ticket_id" gorm:"uniqueIndex;size:64"`

	Attendance bool `json:"attendance" gorm:"not null;default:false"`

	// Approval bookkeeping (merchandise approval path)
	ApprovedBy   *string    `json:"approved_by" gorm:"size:255"`
	ApprovedAt   *time.Time `json:"approved_at"`
	RejectReason *string    `json:"reject_reason" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Event       Event `json:"event" gorm:"foreignKey:EventID"`
	Participant User  `json:"participant" gorm:"foreignKey:ParticipantID"`
}

func (Registration) TableName() string {
	return "registrations"
}
