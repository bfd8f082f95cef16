package validator

import (
	"time"

	"github.com/UniFest-2025/event-service/internal/models"
)

// EventCreateRequest represents the request structure for creating events.
// Events are always created as drafts.
type EventCreateRequest struct {
	Name                 string             `json:"name" validate:"required,min=1,max=200"`
	Description          *string            `json:"description" validate:"omitempty,max=5000"`
	EventType            models.EventType   `json:"event_type" validate:"required,oneof=Normal Merchandise"`
	Eligibility          models.Eligibility `json:"eligibility" validate:"omitempty,oneof=All IIIT"`
	StartsAt             time.Time          `json:"starts_at" validate:"required"`
	EndsAt               time.Time          `json:"ends_at" validate:"required,gtefield=StartsAt"`
	RegistrationDeadline *time.Time         `json:"registration_deadline" validate:"omitempty,future_date"`
	RegistrationLimit    *int               `json:"registration_limit" validate:"omitempty,min=1"`
	RegistrationFee      float64            `json:"registration_fee" validate:"min=0"`
	EventTags            []string           `json:"event_tags" validate:"omitempty,max=20,dive,max=50"`

	// Merchandise only
	ItemDetails *ItemDetailsRequest `json:"item_details"`

	CustomForm []models.CustomFormField `json:"custom_form"`
}

// ItemDetailsRequest configures the merchandise item on an event.
type ItemDetailsRequest struct {
	Sizes         []string `json:"sizes" validate:"omitempty,max=20,dive,max=50"`
	Colors        []string `json:"colors" validate:"omitempty,max=20,dive,max=50"`
	Stock         int      `json:"stock" validate:"required,min=1"`
	PurchaseLimit int      `json:"purchase_limit" validate:"min=0"`
}

// EventUpdateRequest represents the request structure for editing a draft
// event; every field may be overwritten.
type EventUpdateRequest struct {
	Name                 *string             `json:"name" validate:"omitempty,min=1,max=200"`
	Description          *string             `json:"description" validate:"omitempty,max=5000"`
	Eligibility          *models.Eligibility `json:"eligibility" validate:"omitempty,oneof=All IIIT"`
	StartsAt             *time.Time          `json:"starts_at"`
	EndsAt               *time.Time          `json:"ends_at"`
	RegistrationDeadline *time.Time          `json:"registration_deadline"`
	RegistrationLimit    *int                `json:"registration_limit" validate:"omitempty,min=1"`
	RegistrationFee      *float64            `json:"registration_fee" validate:"omitempty,min=0"`
	EventTags            []string            `json:"event_tags" validate:"omitempty,max=20,dive,max=50"`
	ItemDetails          *ItemDetailsRequest `json:"item_details"`
}

// PublishedEventUpdateRequest carries the only fields editable after publish.
type PublishedEventUpdateRequest struct {
	Description          *string    `json:"description" validate:"omitempty,max=5000"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	RegistrationLimit    *int       `json:"registration_limit" validate:"omitempty,min=1"`
}

// CustomFormUpdateRequest replaces the whole ordered field list.
type CustomFormUpdateRequest struct {
	Fields []models.CustomFormField `json:"fields" validate:"required,max=50"`
}

// RegisterRequest is a participant registering for a Normal event.
type RegisterRequest struct {
	TeamName      *string                `json:"team_name" validate:"omitempty,max=100"`
	FormResponses map[string]interface{} `json:"form_responses"`
}

// PurchaseRequest is the legacy immediate-pay merchandise path.
type PurchaseRequest struct {
	Size          *string                `json:"size" validate:"omitempty,max=50"`
	Color         *string                `json:"color" validate:"omitempty,max=50"`
	Quantity      int                    `json:"quantity" validate:"required,min=1"`
	FormResponses map[string]interface{} `json:"form_responses"`
}

// PlaceOrderRequest is the payment-proof approval path; nothing is committed
// until an organizer approves.
type PlaceOrderRequest struct {
	Size          *string                `json:"size" validate:"omitempty,max=50"`
	Color         *string                `json:"color" validate:"omitempty,max=50"`
	Quantity      int                    `json:"quantity" validate:"required,min=1"`
	PaymentProof  *FileUpload            `json:"payment_proof" validate:"required"`
	FormResponses map[string]interface{} `json:"form_responses"`
}

// FileUpload is an embedded-data file payload (base64 data, size capped).
type FileUpload struct {
	Name string `json:"name" validate:"required,max=255"`
	Mime string `json:"mime" validate:"required,max=100"`
	Data string `json:"data" validate:"required"`
}

// RejectOrderRequest carries the organizer's rejection reason.
type RejectOrderRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=500"`
}

// ScanRequest carries the raw scanned QR text. EventID, when set, pins the
// scan to one event's gate.
type ScanRequest struct {
	QRText  string `json:"qr_text" validate:"required"`
	EventID *uint  `json:"event_id" validate:"omitempty,min=1"`
}

// VerifyTicketRequest verifies a ticket by its identifier.
type VerifyTicketRequest struct {
	TicketID string `json:"ticket_id" validate:"required"`
}

// AttendanceOverrideRequest forces attendance to an explicit value. The
// reason is a hard data-layer contract.
type AttendanceOverrideRequest struct {
	Attendance bool   `json:"attendance"`
	Reason     string `json:"reason" validate:"required,min=1,max=500"`
}

// FeedbackCreateRequest is a participant's one-shot event rating.
type FeedbackCreateRequest struct {
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

// PostMessageRequest posts a discussion message, optionally threaded.
type PostMessageRequest struct {
	Content         string `json:"content" validate:"required,min=1,max=4000"`
	ParentMessageID *uint  `json:"parent_message_id"`
	IsAnnouncement  bool   `json:"is_announcement"`
}

// ReactionRequest toggles one user's reaction on a message.
type ReactionRequest struct {
	Label string `json:"label" validate:"required,min=1,max=50"`
}

// SignupRequest creates a participant account.
type SignupRequest struct {
	FullName        string                 `json:"full_name" validate:"required,min=1,max=100"`
	Email           string                 `json:"email" validate:"required,email,max=255"`
	Password        string                 `json:"password" validate:"required,min=8,max=128"`
	InstitutionType models.InstitutionType `json:"institution_type" validate:"required,oneof=IIIT Other"`
	Interests       []string               `json:"interests" validate:"omitempty,max=20,dive,max=50"`
}

// OrganizerCreateRequest is admin-only; the password is generated.
type OrganizerCreateRequest struct {
	FullName     string  `json:"full_name" validate:"required,min=1,max=100"`
	Email        string  `json:"email" validate:"required,email,max=255"`
	OrgName      string  `json:"org_name" validate:"required,min=1,max=200"`
	OrgCategory  *string `json:"org_category" validate:"omitempty,max=100"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email,max=255"`
	WebhookURL   *string `json:"webhook_url" validate:"omitempty,url,max=500"`
}

// OrganizerProfileUpdateRequest is organizer self-service.
type OrganizerProfileUpdateRequest struct {
	OrgName      *string `json:"org_name" validate:"omitempty,min=1,max=200"`
	OrgCategory  *string `json:"org_category" validate:"omitempty,max=100"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email,max=255"`
	WebhookURL   *string `json:"webhook_url" validate:"omitempty,url,max=500"`
}

// ParticipantProfileUpdateRequest is participant self-service.
type ParticipantProfileUpdateRequest struct {
	FullName  *string  `json:"full_name" validate:"omitempty,min=1,max=100"`
	Interests []string `json:"interests" validate:"omitempty,max=20,dive,max=50"`
}
