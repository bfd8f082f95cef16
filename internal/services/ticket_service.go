package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/UniFest-2025/event-service/internal/events"
	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
	"github.com/UniFest-2025/event-service/internal/validator"
)

type ticketService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewTicketService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) TicketService {
	return &ticketService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
	}
}

func (s *ticketService) GetByRegistration(ctx context.Context, registrationID uint, userID string) (*models.Ticket, error) {
	registration, err := s.repo.Registration().GetByID(ctx, nil, registrationID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}

	if registration.ParticipantID != userID {
		if err := requireEventOwner(ctx, s.repo, registration.EventID, userID, "read ticket"); err != nil {
			return nil, err
		}
	}

	ticket, err := s.repo.Ticket().GetByRegistration(ctx, nil, registrationID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return ticket, nil
}

func (s *ticketService) ListByEvent(ctx context.Context, eventID uint, userID string) ([]*models.Ticket, error) {
	if err := requireEventOwner(ctx, s.repo, eventID, userID, "list tickets"); err != nil {
		return nil, err
	}

	tickets, err := s.repo.Ticket().ListByEvent(ctx, nil, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	return tickets, nil
}

// ===== ENTRY VERIFICATION =====

// Scan validates a scanned QR payload and checks the holder in. Every failure
// mode maps to a scan result rather than an error so the gate UI can always
// render an outcome.
func (s *ticketService) Scan(ctx context.Context, req *ScanRequest, organizerID string) (*ScanResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var payload models.QRPayload
	if err := json.Unmarshal([]byte(req.QRText), &payload); err != nil || payload.TicketID == "" {
		return &ScanResponse{Result: ScanResultInvalid, FailureReason: "unreadable QR payload"}, nil
	}

	ticket, err := s.repo.Ticket().GetByTicketID(ctx, nil, payload.TicketID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return &ScanResponse{Result: ScanResultInvalid, Payload: &payload, FailureReason: "unknown ticket"}, nil
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	if req.EventID != nil && ticket.EventID != *req.EventID {
		return &ScanResponse{Result: ScanResultWrongEvent, Payload: &payload, FailureReason: "ticket is for a different event"}, nil
	}

	// A ticket from an event this scanner does not run is a gate mismatch,
	// not an error
	owns, err := s.ownsEvent(ctx, ticket.EventID, organizerID)
	if err != nil {
		return nil, err
	}
	if !owns {
		return &ScanResponse{Result: ScanResultWrongEvent, Payload: &payload, FailureReason: "ticket belongs to another event"}, nil
	}

	if ticket.EventID != payload.EventID {
		return &ScanResponse{Result: ScanResultInvalid, Payload: &payload, FailureReason: "payload does not match ticket"}, nil
	}

	now := time.Now()
	var marked bool
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		marked, err = txRepo.Ticket().MarkUsed(ctx, nil, ticket.TicketID, now, ticket.AuditLog)
		if err != nil {
			return err
		}
		if !marked {
			return nil
		}

		registration, err := txRepo.Registration().GetByID(ctx, nil, ticket.RegistrationID)
		if err != nil {
			return fmt.Errorf("failed to get registration: %w", err)
		}
		registration.Attendance = true
		return txRepo.Registration().Update(ctx, nil, registration)
	})
	if err != nil {
		return nil, err
	}

	if !marked {
		fresh, err := s.repo.Ticket().GetByTicketID(ctx, nil, ticket.TicketID)
		if err != nil {
			return nil, fmt.Errorf("failed to get ticket: %w", err)
		}
		return &ScanResponse{
			Result:        ScanResultAlreadyUsed,
			Ticket:        fresh,
			Payload:       &payload,
			UsedAt:        fresh.UsedAt,
			FailureReason: "ticket already used",
		}, nil
	}

	s.logger.Info("Ticket checked in", "ticket_id", ticket.TicketID, "event_id", ticket.EventID, "scanned_by", organizerID)

	ticket.IsUsed = true
	ticket.UsedAt = &now

	evt := events.NewEvent(events.EventTicketScanned, map[string]interface{}{
		"ticket_id":      ticket.TicketID,
		"event_id":       ticket.EventID,
		"participant_id": ticket.ParticipantID,
		"scanned_by":     organizerID,
	})
	if err := s.eventPublisher.Publish(ctx, events.DomainTopic, evt); err != nil {
		s.logger.Error("Failed to publish scan event", "ticket_id", ticket.TicketID, "error", err)
	}

	return &ScanResponse{Result: ScanResultCheckedIn, Ticket: ticket, Payload: &payload, UsedAt: &now}, nil
}

func (s *ticketService) Verify(ctx context.Context, req *VerifyTicketRequest, organizerID string) (*VerifyTicketResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	ticket, err := s.repo.Ticket().GetByTicketID(ctx, nil, req.TicketID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return &VerifyTicketResponse{Valid: false}, nil
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	if err := requireEventOwner(ctx, s.repo, ticket.EventID, organizerID, "verify ticket"); err != nil {
		return nil, err
	}

	var payload models.QRPayload
	if err := json.Unmarshal(ticket.QRData, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode ticket payload: %w", err)
	}

	return &VerifyTicketResponse{Valid: true, Used: ticket.IsUsed, Payload: &payload}, nil
}

// OverrideAttendance forces a registration's attendance flag and records the
// action in the ticket's audit log.
func (s *ticketService) OverrideAttendance(ctx context.Context, registrationID uint, req *AttendanceOverrideRequest, organizerID string) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	registration, err := s.repo.Registration().GetByID(ctx, nil, registrationID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrRegistrationNotFound
		}
		return fmt.Errorf("failed to get registration: %w", err)
	}

	if err := requireEventOwner(ctx, s.repo, registration.EventID, organizerID, "override attendance"); err != nil {
		return err
	}

	action := models.AuditCheckin
	if !req.Attendance {
		action = models.AuditCheckout
	}
	now := time.Now()

	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		registration.Attendance = req.Attendance
		if err := txRepo.Registration().Update(ctx, nil, registration); err != nil {
			return fmt.Errorf("failed to update attendance: %w", err)
		}

		ticket, err := txRepo.Ticket().GetByRegistration(ctx, nil, registrationID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil
			}
			return fmt.Errorf("failed to get ticket: %w", err)
		}

		auditLog, err := appendAuditEntry(ticket.AuditLog, models.AuditEntry{
			Action: action,
			By:     organizerID,
			Reason: req.Reason,
			At:     now,
		})
		if err != nil {
			return err
		}

		ticket.AuditLog = auditLog
		ticket.IsUsed = req.Attendance
		if req.Attendance {
			ticket.UsedAt = &now
		} else {
			ticket.UsedAt = nil
		}

		if err := txRepo.Ticket().Update(ctx, nil, ticket); err != nil {
			return fmt.Errorf("failed to update ticket: %w", err)
		}

		s.logger.Info("Attendance overridden",
			"registration_id", registrationID, "attendance", req.Attendance, "by", organizerID)
		return nil
	})
}

func (s *ticketService) ownsEvent(ctx context.Context, eventID uint, userID string) (bool, error) {
	event, err := s.repo.Event().GetByID(ctx, nil, eventID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get event: %w", err)
	}
	if event.CreatedBy == userID {
		return true, nil
	}

	isAdmin, err := s.repo.User().HasRole(ctx, userID, models.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("permission check failed: %w", err)
	}
	return isAdmin, nil
}

func appendAuditEntry(auditLog []byte, entry models.AuditEntry) ([]byte, error) {
	var entries []models.AuditEntry
	if len(auditLog) > 0 {
		if err := json.Unmarshal(auditLog, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode audit log: %w", err)
		}
	}
	entries = append(entries, entry)

	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audit log: %w", err)
	}
	return data, nil
}
