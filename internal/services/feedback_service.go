package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
	"github.com/UniFest-2025/event-service/internal/validator"
)

type feedbackService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewFeedbackService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) FeedbackService {
	return &feedbackService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// Submit records a one-shot rating. A standing registration qualifies once
// the event has wound down: closed, past its end, or the registration
// already completed.
func (s *feedbackService) Submit(ctx context.Context, eventID uint, req *FeedbackCreateRequest, participantID string) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	event, err := s.repo.Event().GetByID(ctx, nil, eventID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to get event: %w", err)
	}

	registration, err := s.standingRegistration(ctx, eventID, participantID)
	if err != nil {
		return err
	}

	over := event.Status == models.StatusClosed ||
		!time.Now().Before(event.EndsAt) ||
		registration.Status == models.RegistrationCompleted
	if !over {
		return NewStateError("event", string(event.Status), "submit feedback")
	}

	if _, err := s.repo.Feedback().GetByEventAndParticipant(ctx, nil, eventID, participantID); err == nil {
		return ErrDuplicateFeedback
	} else if !repositories.IsNotFoundError(err) {
		return fmt.Errorf("failed to check existing feedback: %w", err)
	}

	feedback := &models.Feedback{
		EventID:       eventID,
		ParticipantID: participantID,
		Rating:        req.Rating,
		Comment:       req.Comment,
	}

	if err := s.repo.Feedback().Create(ctx, nil, feedback); err != nil {
		if repositories.IsDuplicateError(err) {
			return ErrDuplicateFeedback
		}
		return fmt.Errorf("failed to create feedback: %w", err)
	}

	s.logger.Info("Feedback submitted", "event_id", eventID, "rating", req.Rating)
	return nil
}

// standingRegistration finds the participant's registration that still
// stands: held or completed, not cancelled or rejected.
func (s *feedbackService) standingRegistration(ctx context.Context, eventID uint, participantID string) (*models.Registration, error) {
	registrations, _, err := s.repo.Registration().GetByParticipant(ctx, nil, participantID, repositories.RegistrationFilters{
		EventID: &eventID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check registration: %w", err)
	}

	for _, registration := range registrations {
		if registration.Status == models.RegistrationRegistered || registration.Status == models.RegistrationCompleted {
			return registration, nil
		}
	}

	return nil, NewPermissionError(participantID, eventID, "feedback", "submit", "no standing registration for this event")
}

// ListByEvent returns anonymized feedback for the event's organizer. Author
// identities never leave the service layer.
func (s *feedbackService) ListByEvent(ctx context.Context, eventID uint, filters repositories.FeedbackFilters, userID string) ([]*FeedbackResponse, int64, error) {
	if err := requireEventOwner(ctx, s.repo, eventID, userID, "list feedback"); err != nil {
		return nil, 0, err
	}

	rows, total, err := s.repo.Feedback().ListByEvent(ctx, nil, eventID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list feedback: %w", err)
	}

	responses := make([]*FeedbackResponse, 0, len(rows))
	for _, f := range rows {
		responses = append(responses, &FeedbackResponse{
			Rating:    f.Rating,
			Comment:   f.Comment,
			CreatedAt: f.CreatedAt,
		})
	}

	return responses, total, nil
}

func (s *feedbackService) GetEventRating(ctx context.Context, eventID uint) (*EventRatingResponse, error) {
	if _, err := s.repo.Event().GetByID(ctx, nil, eventID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	average, count, err := s.repo.Feedback().GetEventRating(ctx, nil, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event rating: %w", err)
	}

	return &EventRatingResponse{
		EventID:       eventID,
		AverageRating: average,
		FeedbackCount: count,
	}, nil
}
