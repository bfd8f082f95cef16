package services

import (
	"context"
	"time"

	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
	"github.com/UniFest-2025/event-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateEventRequest = validator.EventCreateRequest
type UpdateEventRequest = validator.EventUpdateRequest
type UpdatePublishedEventRequest = validator.PublishedEventUpdateRequest
type UpdateCustomFormRequest = validator.CustomFormUpdateRequest

type RegisterRequest = validator.RegisterRequest
type PurchaseRequest = validator.PurchaseRequest
type PlaceOrderRequest = validator.PlaceOrderRequest
type RejectOrderRequest = validator.RejectOrderRequest

type ScanRequest = validator.ScanRequest
type VerifyTicketRequest = validator.VerifyTicketRequest
type AttendanceOverrideRequest = validator.AttendanceOverrideRequest

type PostMessageRequest = validator.PostMessageRequest
type ReactionRequest = validator.ReactionRequest
type FeedbackCreateRequest = validator.FeedbackCreateRequest

type SignupRequest = validator.SignupRequest
type CreateOrganizerRequest = validator.OrganizerCreateRequest
type UpdateOrganizerProfileRequest = validator.OrganizerProfileUpdateRequest
type UpdateParticipantProfileRequest = validator.ParticipantProfileUpdateRequest

type EventResponse struct {
	*models.Event
	CanEdit     bool `json:"can_edit"`
	CanDelete   bool `json:"can_delete"`
	CanRegister bool `json:"can_register"`
}

type EventListResponse struct {
	Events []*EventResponse `json:"events"`
	Total  int64            `json:"total"`
	Page   int              `json:"page"`
	Size   int              `json:"size"`
}

type RegistrationResponse struct {
	*models.Registration
	Ticket *models.Ticket `json:"ticket,omitempty"`
}

type RegistrationListResponse struct {
	Registrations []*RegistrationResponse `json:"registrations"`
	Total         int64                   `json:"total"`
	Page          int                     `json:"page"`
	Size          int                     `json:"size"`
}

// Scan outcomes
const (
	ScanResultCheckedIn   = "checked_in"
	ScanResultAlreadyUsed = "already_used"
	ScanResultInvalid     = "invalid"
	ScanResultWrongEvent  = "wrong_event"
)

type ScanResponse struct {
	Result    string            `json:"result"`
	Ticket    *models.Ticket    `json:"ticket,omitempty"`
	Payload   *models.QRPayload `json:"payload,omitempty"`
	UsedAt    *time.Time        `json:"used_at,omitempty"`
	FailureReason string        `json:"failure_reason,omitempty"`
}

type VerifyTicketResponse struct {
	Valid   bool              `json:"valid"`
	Used    bool              `json:"used"`
	Payload *models.QRPayload `json:"payload,omitempty"`
}

type MessageResponse struct {
	*models.DiscussionMessage
}

type ThreadResponse struct {
	Messages []*models.DiscussionMessage `json:"messages"`
	Pinned   []*models.DiscussionMessage `json:"pinned"`
	Total    int64                       `json:"total"`
}

type FeedbackResponse struct {
	Rating    int        `json:"rating"`
	Comment   *string    `json:"comment,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type EventRatingResponse struct {
	EventID       uint    `json:"event_id"`
	AverageRating float64 `json:"average_rating"`
	FeedbackCount int64   `json:"feedback_count"`
}

type OrganizerResponse struct {
	*models.User
	// Set only on creation and credential resets, never persisted
	TempPassword string `json:"temp_password,omitempty"`
}

type ResetRequestResponse struct {
	*models.PasswordResetRequest
}

type ExportResult struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// ===== SERVICE INTERFACES =====

type EventService interface {
	// Core CRUD operations
	Create(ctx context.Context, req *CreateEventRequest, creatorID string) (*EventResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*EventResponse, error)
	GetByIDWithDetails(ctx context.Context, id uint, userID string) (*EventResponse, error)
	Update(ctx context.Context, id uint, req *UpdateEventRequest, userID string) (*EventResponse, error)
	UpdatePublished(ctx context.Context, id uint, req *UpdatePublishedEventRequest, userID string) (*EventResponse, error)
	UpdateCustomForm(ctx context.Context, id uint, req *UpdateCustomFormRequest, userID string) (*EventResponse, error)
	Delete(ctx context.Context, id uint, userID string) error

	// List and search operations
	List(ctx context.Context, filters repositories.EventFilters, userID string) (*EventListResponse, error)
	GetByOrganizer(ctx context.Context, organizerID string, filters repositories.EventFilters) (*EventListResponse, error)
	Search(ctx context.Context, query string, filters repositories.EventFilters, userID string) (*EventListResponse, error)

	// Lifecycle management
	Publish(ctx context.Context, id uint, userID string) error
	Start(ctx context.Context, id uint, userID string) error
	Close(ctx context.Context, id uint, userID string) error

	// Permission checks
	CanEdit(ctx context.Context, eventID uint, userID string) (bool, error)
	CanDelete(ctx context.Context, eventID uint, userID string) (bool, error)
}

type RegistrationService interface {
	// Participant operations
	Register(ctx context.Context, eventID uint, req *RegisterRequest, participantID string) (*RegistrationResponse, error)
	Cancel(ctx context.Context, eventID uint, participantID string) error
	GetByID(ctx context.Context, id uint, userID string) (*RegistrationResponse, error)
	GetByParticipant(ctx context.Context, participantID string, filters repositories.RegistrationFilters) (*RegistrationListResponse, error)

	// Organizer operations
	GetByEvent(ctx context.Context, eventID uint, filters repositories.RegistrationFilters, userID string) (*RegistrationListResponse, error)

	// Discovery
	GetTrendingEvents(ctx context.Context, limit int) ([]*repositories.TrendingEvent, error)
}

type TicketService interface {
	GetByRegistration(ctx context.Context, registrationID uint, userID string) (*models.Ticket, error)
	ListByEvent(ctx context.Context, eventID uint, userID string) ([]*models.Ticket, error)

	// Entry verification
	Scan(ctx context.Context, req *ScanRequest, organizerID string) (*ScanResponse, error)
	Verify(ctx context.Context, req *VerifyTicketRequest, organizerID string) (*VerifyTicketResponse, error)
	OverrideAttendance(ctx context.Context, registrationID uint, req *AttendanceOverrideRequest, organizerID string) error
}

type MerchService interface {
	// Direct purchase path: stock is committed immediately
	Purchase(ctx context.Context, eventID uint, req *PurchaseRequest, participantID string) (*RegistrationResponse, error)

	// Approval path: the order waits for the organizer, stock is committed
	// only at approval
	PlaceOrder(ctx context.Context, eventID uint, req *PlaceOrderRequest, participantID string) (*RegistrationResponse, error)
	ListOrders(ctx context.Context, eventID uint, filters repositories.RegistrationFilters, userID string) (*RegistrationListResponse, error)
	ApproveOrder(ctx context.Context, registrationID uint, userID string) (*RegistrationResponse, error)
	RejectOrder(ctx context.Context, registrationID uint, req *RejectOrderRequest, userID string) (*RegistrationResponse, error)
}

type DiscussionService interface {
	PostMessage(ctx context.Context, eventID uint, req *PostMessageRequest, authorID string) (*MessageResponse, error)
	GetThread(ctx context.Context, eventID uint, userID string) (*ThreadResponse, error)
	PinMessage(ctx context.Context, messageID uint, pinned bool, userID string) error
	DeleteMessage(ctx context.Context, messageID uint, userID string) error
	React(ctx context.Context, messageID uint, req *ReactionRequest, userID string) (*MessageResponse, error)
}

type FeedbackService interface {
	Submit(ctx context.Context, eventID uint, req *FeedbackCreateRequest, participantID string) error
	ListByEvent(ctx context.Context, eventID uint, filters repositories.FeedbackFilters, userID string) ([]*FeedbackResponse, int64, error)
	GetEventRating(ctx context.Context, eventID uint) (*EventRatingResponse, error)
}

type AccountService interface {
	// Self-service
	Signup(ctx context.Context, req *SignupRequest) (*models.User, error)
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateParticipantProfile(ctx context.Context, userID string, req *UpdateParticipantProfileRequest) (*models.User, error)
	UpdateOrganizerProfile(ctx context.Context, userID string, req *UpdateOrganizerProfileRequest) (*models.User, error)
	FollowOrganizer(ctx context.Context, participantID, organizerID string, follow bool) error

	// Organizer-initiated credential reset
	RequestPasswordReset(ctx context.Context, organizerID string) (*ResetRequestResponse, error)
}

type AdminService interface {
	// Organizer account management
	CreateOrganizer(ctx context.Context, req *CreateOrganizerRequest, adminID string) (*OrganizerResponse, error)
	ListOrganizers(ctx context.Context, filters repositories.UserFilters, adminID string) ([]*OrganizerResponse, int64, error)
	SetOrganizerDisabled(ctx context.Context, organizerID string, disabled bool, adminID string) error
	SetOrganizerArchived(ctx context.Context, organizerID string, archived bool, adminID string) error
	DeleteOrganizer(ctx context.Context, organizerID string, adminID string) error

	// Reset queue
	ListResetRequests(ctx context.Context, filters repositories.ResetRequestFilters, adminID string) ([]*ResetRequestResponse, int64, error)
	ResolveResetRequest(ctx context.Context, requestID uint, approve bool, adminID string) (*OrganizerResponse, error)
}

type AnalyticsService interface {
	GetEventStats(ctx context.Context, eventID uint, userID string) (*repositories.EventStats, error)
	GetOrganizerStats(ctx context.Context, organizerID string, userID string) (*repositories.OrganizerStats, error)
	GetPlatformStats(ctx context.Context, userID string) (*repositories.PlatformStats, error)
}

type ExportService interface {
	ExportAttendanceCSV(ctx context.Context, eventID uint, userID string) (*ExportResult, error)
	ExportAttendanceXLSX(ctx context.Context, eventID uint, userID string) (*ExportResult, error)
}

// ServiceManager wires every service together and owns their lifecycle
type ServiceManager interface {
	Event() EventService
	Registration() RegistrationService
	Ticket() TicketService
	Merch() MerchService
	Discussion() DiscussionService
	Feedback() FeedbackService
	Account() AccountService
	Admin() AdminService
	Analytics() AnalyticsService
	Export() ExportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
	IsInitialized() bool
	IsShutdown() bool
}
