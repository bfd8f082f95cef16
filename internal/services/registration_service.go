package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/UniFest-2025/event-service/internal/events"
	"github.com/UniFest-2025/event-service/internal/mailer"
	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
	"github.com/UniFest-2025/event-service/internal/validator"
)

// trendingWindow bounds how far back recent registrations count toward the
// trending ranking.
const trendingWindow = 24 * time.Hour

const defaultTrendingLimit = 5

type registrationService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
	mailer         mailer.Mailer
}

func NewRegistrationService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, m mailer.Mailer) RegistrationService {
	return &registrationService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
		mailer:         m,
	}
}

// ===== PARTICIPANT OPERATIONS =====

func (s *registrationService) Register(ctx context.Context, eventID uint, req *RegisterRequest, participantID string) (*RegistrationResponse, error) {
	s.logger.Info("Registering participant", "event_id", eventID, "participant_id", participantID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	event, err := s.repo.Event().GetByID(ctx, nil, eventID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if event.IsMerchandise() {
		return nil, NewStateError("event", string(event.EventType), "register")
	}

	participant, err := s.repo.User().GetByID(ctx, participantID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	bv := s.validator.GetBusinessValidator()
	if errs := bv.ValidateRegistrationWindow(event, participant, time.Now()); len(errs) > 0 {
		return nil, errs
	}

	formFields, err := decodeCustomForm(event)
	if err != nil {
		return nil, err
	}
	if errs := bv.ValidateFormResponses(formFields, req.FormResponses); len(errs) > 0 {
		return nil, errs
	}

	// Payment is collected out of band; a registration that gets through
	// the window checks is considered settled
	registration := &models.Registration{
		EventID:            eventID,
		ParticipantID:      participantID,
		Status:             models.RegistrationRegistered,
		PaymentStatus:      models.PaymentPaid,
		MerchPaymentStatus: models.MerchPaymentNone,
		TeamName:           req.TeamName,
	}
	if registration.FormResponses, err = marshalJSONField(req.FormResponses); err != nil {
		return nil, err
	}

	var ticket *models.Ticket
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := checkNoActiveRegistration(ctx, txRepo, eventID, participantID); err != nil {
			return err
		}
		if err := checkCapacity(ctx, txRepo, event); err != nil {
			return err
		}

		if err := txRepo.Registration().Create(ctx, nil, registration); err != nil {
			return fmt.Errorf("failed to create registration: %w", err)
		}

		ticket, err = issueTicket(ctx, txRepo, event, registration, participant)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Registration created", "registration_id", registration.ID, "ticket_id", ticket.TicketID)

	s.publishRegistrationEvent(ctx, events.EventRegistrationCreated, event, registration)
	s.sendTicketMail(ctx, participant, event, ticket)

	return &RegistrationResponse{Registration: registration, Ticket: ticket}, nil
}

func (s *registrationService) Cancel(ctx context.Context, eventID uint, participantID string) error {
	s.logger.Info("Cancelling registration", "event_id", eventID, "participant_id", participantID)

	event, err := s.repo.Event().GetByID(ctx, nil, eventID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to get event: %w", err)
	}

	// Participants may back out at any point, even after the event closed
	var flipped int64
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		flipped, err = txRepo.Registration().BulkUpdateStatusByParticipant(ctx, nil, eventID, participantID,
			[]models.RegistrationStatus{models.RegistrationRegistered, models.RegistrationPendingApproval},
			models.RegistrationCancelled)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to cancel registration: %w", err)
	}
	if flipped == 0 {
		return ErrRegistrationNotFound
	}

	s.publishRegistrationEvent(ctx, events.EventRegistrationCancelled, event, &models.Registration{
		EventID:       eventID,
		ParticipantID: participantID,
	})

	return nil
}

func (s *registrationService) GetByID(ctx context.Context, id uint, userID string) (*RegistrationResponse, error) {
	registration, err := s.repo.Registration().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}

	if err := s.checkRegistrationAccess(ctx, registration, userID); err != nil {
		return nil, err
	}

	ticket, err := s.repo.Ticket().GetByRegistration(ctx, nil, registration.ID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return &RegistrationResponse{Registration: registration, Ticket: ticket}, nil
}

func (s *registrationService) GetByParticipant(ctx context.Context, participantID string, filters repositories.RegistrationFilters) (*RegistrationListResponse, error) {
	registrations, total, err := s.repo.Registration().GetByParticipant(ctx, nil, participantID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}

	return buildRegistrationListResponse(registrations, total, filters.Limit, filters.Offset), nil
}

// ===== ORGANIZER OPERATIONS =====

func (s *registrationService) GetByEvent(ctx context.Context, eventID uint, filters repositories.RegistrationFilters, userID string) (*RegistrationListResponse, error) {
	if err := requireEventOwner(ctx, s.repo, eventID, userID, "list registrations"); err != nil {
		return nil, err
	}

	registrations, total, err := s.repo.Registration().GetByEvent(ctx, nil, eventID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}

	return buildRegistrationListResponse(registrations, total, filters.Limit, filters.Offset), nil
}

// ===== DISCOVERY =====

func (s *registrationService) GetTrendingEvents(ctx context.Context, limit int) ([]*repositories.TrendingEvent, error) {
	if limit <= 0 {
		limit = defaultTrendingLimit
	}

	trending, err := s.repo.Analytics().GetTrendingEvents(ctx, nil, time.Now().Add(-trendingWindow), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get trending events: %w", err)
	}

	return trending, nil
}

// ===== HELPERS =====

func (s *registrationService) checkRegistrationAccess(ctx context.Context, registration *models.Registration, userID string) error {
	if registration.ParticipantID == userID {
		return nil
	}

	event, err := s.repo.Event().GetByID(ctx, nil, registration.EventID)
	if err != nil {
		return fmt.Errorf("failed to get event: %w", err)
	}
	if event.CreatedBy == userID {
		return nil
	}

	isAdmin, err := s.repo.User().HasRole(ctx, userID, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("permission check failed: %w", err)
	}
	if !isAdmin {
		return NewPermissionError(userID, registration.ID, "registration", "read", "not your registration")
	}

	return nil
}

func (s *registrationService) publishRegistrationEvent(ctx context.Context, eventType string, event *models.Event, registration *models.Registration) {
	evt := events.NewEvent(eventType, map[string]interface{}{
		"event_id":        event.ID,
		"event_name":      event.Name,
		"registration_id": registration.ID,
		"participant_id":  registration.ParticipantID,
	})
	if err := s.eventPublisher.Publish(ctx, events.DomainTopic, evt); err != nil {
		s.logger.Error("Failed to publish registration event", "type", eventType, "error", err)
	}
}

func (s *registrationService) sendTicketMail(ctx context.Context, participant *models.User, event *models.Event, ticket *models.Ticket) {
	if err := s.mailer.SendTicket(ctx, participant.Email, participant.FullName, event, ticket); err != nil {
		s.logger.Warn("Failed to send ticket email", "participant_id", participant.ID, "error", err)
	}
}

// checkNoActiveRegistration rejects a second live registration for the same
// event; cancelled and rejected ones do not block re-registering.
func checkNoActiveRegistration(ctx context.Context, repo repositories.Repository, eventID uint, participantID string) error {
	_, err := repo.Registration().GetActiveByEventAndParticipant(ctx, nil, eventID, participantID)
	if err == nil {
		return ErrDuplicateRegistration
	}
	if !repositories.IsNotFoundError(err) {
		return fmt.Errorf("failed to check existing registration: %w", err)
	}
	return nil
}

// checkCapacity counts live registrations against the event's limit. Runs
// inside the write transaction so the limit holds under concurrent signups.
func checkCapacity(ctx context.Context, repo repositories.Repository, event *models.Event) error {
	if event.RegistrationLimit == nil {
		return nil
	}

	count, err := repo.Registration().CountActiveByEvent(ctx, nil, event.ID)
	if err != nil {
		return fmt.Errorf("failed to count registrations: %w", err)
	}
	if count >= int64(*event.RegistrationLimit) {
		return ErrEventFull
	}

	return nil
}

// issueTicket creates the entry credential for a registration and links it
// back via the registration's ticket id.
func issueTicket(ctx context.Context, repo repositories.Repository, event *models.Event, registration *models.Registration, participant *models.User) (*models.Ticket, error) {
	ticketID := models.TicketIDPrefix + uuid.New().String()

	payload := models.QRPayload{
		TicketID:         ticketID,
		EventID:          event.ID,
		EventName:        event.Name,
		ParticipantID:    participant.ID,
		ParticipantName:  participant.FullName,
		ParticipantEmail: participant.Email,
		MerchQuantity:    registration.MerchQuantity,
	}
	if registration.MerchSize != nil {
		payload.MerchSize = *registration.MerchSize
	}
	if registration.MerchColor != nil {
		payload.MerchColor = *registration.MerchColor
	}

	qrData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ticket payload: %w", err)
	}

	ticket := &models.Ticket{
		TicketID:       ticketID,
		EventID:        event.ID,
		RegistrationID: registration.ID,
		ParticipantID:  participant.ID,
		QRData:         qrData,
	}
	if err := repo.Ticket().Create(ctx, nil, ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	registration.TicketID = &ticketID
	if err := repo.Registration().Update(ctx, nil, registration); err != nil {
		return nil, fmt.Errorf("failed to link ticket: %w", err)
	}

	return ticket, nil
}

// decodeCustomForm parses the event's stored form definition.
func decodeCustomForm(event *models.Event) ([]models.CustomFormField, error) {
	if len(event.CustomForm) == 0 {
		return nil, nil
	}

	var fields []models.CustomFormField
	if err := json.Unmarshal(event.CustomForm, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode custom form: %w", err)
	}

	return fields, nil
}

// requireEventOwner asserts the user owns the event or is an admin.
func requireEventOwner(ctx context.Context, repo repositories.Repository, eventID uint, userID, action string) error {
	event, err := repo.Event().GetByID(ctx, nil, eventID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to get event: %w", err)
	}

	if event.CreatedBy == userID {
		return nil
	}

	isAdmin, err := repo.User().HasRole(ctx, userID, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("permission check failed: %w", err)
	}
	if !isAdmin {
		return NewPermissionError(userID, eventID, "event", action, "not the event owner")
	}

	return nil
}

func buildRegistrationListResponse(registrations []*models.Registration, total int64, limit, offset int) *RegistrationListResponse {
	responses := make([]*RegistrationResponse, 0, len(registrations))
	for _, registration := range registrations {
		responses = append(responses, &RegistrationResponse{Registration: registration})
	}

	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}

	return &RegistrationListResponse{
		Registrations: responses,
		Total:         total,
		Page:          page,
		Size:          len(responses),
	}
}
