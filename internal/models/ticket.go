package models

import (
	"time"

	"gorm.io/datatypes"
)

// TicketIDPrefix is the prefix of every issued ticket identifier; the rest is
// a random UUID.
const TicketIDPrefix = "FEST-"

// QRPayload is the JSON document encoded into a ticket's QR code. The payload
// itself is the entry credential; scanning parses it back under this same
// schema to recover the ticket id.
type QRPayload struct {
	TicketID         string `json:"ticket_id"`
	EventID          uint   `json:"event_id"`
	EventName        string `json:"event_name"`
	ParticipantID    string `json:"participant_id"`
	ParticipantName  string `json:"participant_name"`
	ParticipantEmail string `json:"participant_email"`
	MerchSize        string `json:"merch_size,omitempty"`
	MerchColor       string `json:"merch_color,omitempty"`
	MerchQuantity    int    `json:"merch_quantity,omitempty"`
}

type AuditAction string

const (
	AuditCheckin  AuditAction = "checkin"
	AuditCheckout AuditAction = "checkout"
)

// AuditEntry is one manual-override record appended to a ticket's audit log.
type AuditEntry struct {
	Action AuditAction `json:"action"`
	By     string      `json:"by"`
	Reason string      `json:"reason"`
	At     time.Time   `json:"at"`
}

type Ticket struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	TicketID       string `json:"ticket_id" gorm:"uniqueIndex;not null;size:64"`
	EventID        uint   `json:"event_id" gorm:"not null;index"`
	RegistrationID uint   `json:"registration_id" gorm:"not null;index"`
	ParticipantID  string `json:"participant_id" gorm:"not null;size:255;index"`

	// Serialized QRPayload.
	QRData datatypes.JSON `json:"qr_data" gorm:"type:jsonb"`

	IsUsed bool       `json:"is_used" gorm:"not null;default:false"`
	UsedAt *time.Time `json:"used_at"`

	// Append-only []AuditEntry of manual override actions.
	AuditLog datatypes.JSON `json:"audit_log" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Event        Event        `json:"event" gorm:"foreignKey:EventID"`
	Registration Registration `json:"registration" gorm:"foreignKey:RegistrationID"`
	Participant  User         `json:"participant" gorm:"foreignKey:ParticipantID"`
}

func (Ticket) TableName() string {
	return "tickets"
}
