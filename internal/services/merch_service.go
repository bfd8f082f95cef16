package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/UniFest-2025/event-service/internal/events"
	"github.com/UniFest-2025/event-service/internal/mailer"
	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
	"github.com/UniFest-2025/event-service/internal/validator"
)

type merchService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
	mailer         mailer.Mailer
}

func NewMerchService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, m mailer.Mailer) MerchService {
	return &merchService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
		mailer:         m,
	}
}

// Purchase commits stock immediately: the decrement, the registration and the
// ticket land in one transaction.
func (s *merchService) Purchase(ctx context.Context, eventID uint, req *PurchaseRequest, participantID string) (*RegistrationResponse, error) {
	s.logger.Info("Processing purchase", "event_id", eventID, "participant_id", participantID, "quantity", req.Quantity)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	event, participant, err := s.loadPurchaseContext(ctx, eventID, participantID, req.Size, req.Color, req.Quantity, req.FormResponses)
	if err != nil {
		return nil, err
	}

	registration := &models.Registration{
		EventID:            eventID,
		ParticipantID:      participantID,
		Status:             models.RegistrationRegistered,
		PaymentStatus:      models.PaymentPaid,
		MerchPaymentStatus: models.MerchPaymentApproved,
		MerchSize:          req.Size,
		MerchColor:         req.Color,
		MerchQuantity:      req.Quantity,
	}
	if registration.FormResponses, err = marshalJSONField(req.FormResponses); err != nil {
		return nil, err
	}

	var ticket *models.Ticket
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := s.checkPurchaseLimit(ctx, txRepo, event, participantID, req.Quantity); err != nil {
			return err
		}

		decremented, err := txRepo.Event().DecrementStock(ctx, nil, eventID, req.Quantity)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		if !decremented {
			return ErrOutOfStock
		}

		if err := txRepo.Registration().Create(ctx, nil, registration); err != nil {
			return fmt.Errorf("failed to create purchase: %w", err)
		}

		ticket, err = issueTicket(ctx, txRepo, event, registration, participant)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase completed", "registration_id", registration.ID, "ticket_id", ticket.TicketID)
	s.sendTicketMail(ctx, participant, event, ticket)

	return &RegistrationResponse{Registration: registration, Ticket: ticket}, nil
}

// PlaceOrder records the order and its payment proof without touching stock;
// the organizer's approval commits it.
func (s *merchService) PlaceOrder(ctx context.Context, eventID uint, req *PlaceOrderRequest, participantID string) (*RegistrationResponse, error) {
	s.logger.Info("Placing order", "event_id", eventID, "participant_id", participantID, "quantity", req.Quantity)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if errs := s.validator.GetBusinessValidator().ValidateFileUpload(req.PaymentProof); len(errs) > 0 {
		return nil, errs
	}

	event, _, err := s.loadPurchaseContext(ctx, eventID, participantID, req.Size, req.Color, req.Quantity, req.FormResponses)
	if err != nil {
		return nil, err
	}

	registration := &models.Registration{
		EventID:            eventID,
		ParticipantID:      participantID,
		Status:             models.RegistrationPendingApproval,
		PaymentStatus:      models.PaymentPending,
		MerchPaymentStatus: models.MerchPaymentPendingApproval,
		MerchSize:          req.Size,
		MerchColor:         req.Color,
		MerchQuantity:      req.Quantity,
	}
	if registration.FormResponses, err = marshalJSONField(req.FormResponses); err != nil {
		return nil, err
	}
	if registration.PaymentProof, err = marshalJSONField(req.PaymentProof); err != nil {
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := checkNoActiveRegistration(ctx, txRepo, eventID, participantID); err != nil {
			return err
		}
		if err := s.checkPurchaseLimit(ctx, txRepo, event, participantID, req.Quantity); err != nil {
			return err
		}

		// Orders can still queue past the current stock level; the
		// shortfall surfaces at approval time
		if err := txRepo.Registration().Create(ctx, nil, registration); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order placed", "registration_id", registration.ID)

	return &RegistrationResponse{Registration: registration}, nil
}

func (s *merchService) ListOrders(ctx context.Context, eventID uint, filters repositories.RegistrationFilters, userID string) (*RegistrationListResponse, error) {
	if err := requireEventOwner(ctx, s.repo, eventID, userID, "list orders"); err != nil {
		return nil, err
	}

	if filters.MerchPaymentStatus == nil {
		pending := models.MerchPaymentPendingApproval
		filters.MerchPaymentStatus = &pending
	}

	registrations, total, err := s.repo.Registration().GetByEvent(ctx, nil, eventID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return buildRegistrationListResponse(registrations, total, filters.Limit, filters.Offset), nil
}

// ApproveOrder commits the stock the order asked for. An order that can no
// longer be covered fails with the stock error and stays pending.
func (s *merchService) ApproveOrder(ctx context.Context, registrationID uint, userID string) (*RegistrationResponse, error) {
	s.logger.Info("Approving order", "registration_id", registrationID, "user_id", userID)

	registration, event, participant, err := s.loadPendingOrder(ctx, registrationID, userID, "approve order")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var ticket *models.Ticket
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		decremented, err := txRepo.Event().DecrementStock(ctx, nil, event.ID, registration.MerchQuantity)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		if !decremented {
			return ErrOutOfStock
		}

		registration.Status = models.RegistrationRegistered
		registration.PaymentStatus = models.PaymentPaid
		registration.MerchPaymentStatus = models.MerchPaymentApproved
		registration.ApprovedBy = &userID
		registration.ApprovedAt = &now
		if err := txRepo.Registration().Update(ctx, nil, registration); err != nil {
			return fmt.Errorf("failed to approve order: %w", err)
		}

		ticket, err = issueTicket(ctx, txRepo, event, registration, participant)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order approved", "registration_id", registrationID, "ticket_id", ticket.TicketID)

	s.publishOrderDecision(ctx, event, registration, true, "")
	s.sendOrderDecisionMail(ctx, participant, event, true, "")
	s.sendTicketMail(ctx, participant, event, ticket)

	return &RegistrationResponse{Registration: registration, Ticket: ticket}, nil
}

func (s *merchService) RejectOrder(ctx context.Context, registrationID uint, req *RejectOrderRequest, userID string) (*RegistrationResponse, error) {
	s.logger.Info("Rejecting order", "registration_id", registrationID, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	registration, event, participant, err := s.loadPendingOrder(ctx, registrationID, userID, "reject order")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		registration.Status = models.RegistrationRejected
		registration.MerchPaymentStatus = models.MerchPaymentRejected
		registration.RejectReason = &req.Reason
		registration.ApprovedBy = &userID
		registration.ApprovedAt = &now
		return txRepo.Registration().Update(ctx, nil, registration)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reject order: %w", err)
	}

	s.publishOrderDecision(ctx, event, registration, false, req.Reason)
	s.sendOrderDecisionMail(ctx, participant, event, false, req.Reason)

	return &RegistrationResponse{Registration: registration}, nil
}

// ===== HELPERS =====

// loadPurchaseContext runs the shared pre-checks of both purchase paths:
// event type, registration window, merch selection and form responses.
func (s *merchService) loadPurchaseContext(ctx context.Context, eventID uint, participantID string, size, color *string, quantity int, formResponses map[string]interface{}) (*models.Event, *models.User, error) {
	event, err := s.repo.Event().GetByID(ctx, nil, eventID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrEventNotFound
		}
		return nil, nil, fmt.Errorf("failed to get event: %w", err)
	}

	if !event.IsMerchandise() {
		return nil, nil, NewStateError("event", string(event.EventType), "purchase")
	}

	participant, err := s.repo.User().GetByID(ctx, participantID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("failed to get participant: %w", err)
	}

	bv := s.validator.GetBusinessValidator()
	if errs := bv.ValidateRegistrationWindow(event, participant, time.Now()); len(errs) > 0 {
		return nil, nil, errs
	}

	sizes, colors, err := decodeItemOptions(event)
	if err != nil {
		return nil, nil, err
	}
	if errs := bv.ValidateMerchSelection(sizes, colors, size, color); len(errs) > 0 {
		return nil, nil, errs
	}

	formFields, err := decodeCustomForm(event)
	if err != nil {
		return nil, nil, err
	}
	if errs := bv.ValidateFormResponses(formFields, formResponses); len(errs) > 0 {
		return nil, nil, errs
	}

	return event, participant, nil
}

// checkPurchaseLimit sums the participant's committed and pending units
// against the per-participant cap.
func (s *merchService) checkPurchaseLimit(ctx context.Context, repo repositories.Repository, event *models.Event, participantID string, quantity int) error {
	if event.ItemPurchaseLimit <= 0 {
		return nil
	}

	purchased, err := repo.Registration().SumQuantityByParticipant(ctx, nil, event.ID, participantID)
	if err != nil {
		return fmt.Errorf("failed to sum purchases: %w", err)
	}
	if purchased+quantity > event.ItemPurchaseLimit {
		return ErrPurchaseLimitExceeded
	}

	return nil
}

// loadPendingOrder fetches an order awaiting decision and asserts the caller
// may decide it.
func (s *merchService) loadPendingOrder(ctx context.Context, registrationID uint, userID, action string) (*models.Registration, *models.Event, *models.User, error) {
	registration, err := s.repo.Registration().GetByID(ctx, nil, registrationID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, nil, ErrRegistrationNotFound
		}
		return nil, nil, nil, fmt.Errorf("failed to get order: %w", err)
	}

	if registration.MerchPaymentStatus != models.MerchPaymentPendingApproval {
		return nil, nil, nil, NewStateError("order", string(registration.MerchPaymentStatus), action)
	}

	if err := requireEventOwner(ctx, s.repo, registration.EventID, userID, action); err != nil {
		return nil, nil, nil, err
	}

	event, err := s.repo.Event().GetByID(ctx, nil, registration.EventID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get event: %w", err)
	}

	participant, err := s.repo.User().GetByID(ctx, registration.ParticipantID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get participant: %w", err)
	}

	return registration, event, participant, nil
}

func (s *merchService) publishOrderDecision(ctx context.Context, event *models.Event, registration *models.Registration, approved bool, reason string) {
	evt := events.NewEvent(events.EventOrderDecided, map[string]interface{}{
		"event_id":        event.ID,
		"registration_id": registration.ID,
		"participant_id":  registration.ParticipantID,
		"approved":        approved,
		"reason":          reason,
	})
	if err := s.eventPublisher.Publish(ctx, events.DomainTopic, evt); err != nil {
		s.logger.Error("Failed to publish order decision", "registration_id", registration.ID, "error", err)
	}
}

func (s *merchService) sendOrderDecisionMail(ctx context.Context, participant *models.User, event *models.Event, approved bool, reason string) {
	if err := s.mailer.SendOrderDecision(ctx, participant.Email, participant.FullName, event.Name, approved, reason); err != nil {
		s.logger.Warn("Failed to send order decision email", "participant_id", participant.ID, "error", err)
	}
}

func (s *merchService) sendTicketMail(ctx context.Context, participant *models.User, event *models.Event, ticket *models.Ticket) {
	if err := s.mailer.SendTicket(ctx, participant.Email, participant.FullName, event, ticket); err != nil {
		s.logger.Warn("Failed to send ticket email", "participant_id", participant.ID, "error", err)
	}
}

func decodeItemOptions(event *models.Event) (sizes, colors []string, err error) {
	if len(event.ItemSizes) > 0 {
		if err := unmarshalStringList(event.ItemSizes, &sizes); err != nil {
			return nil, nil, err
		}
	}
	if len(event.ItemColors) > 0 {
		if err := unmarshalStringList(event.ItemColors, &colors); err != nil {
			return nil, nil, err
		}
	}
	return sizes, colors, nil
}
