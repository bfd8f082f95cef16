package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/UniFest-2025/event-service/internal/mailer"
	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
	"github.com/UniFest-2025/event-service/internal/validator"
)

type adminService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	mailer    mailer.Mailer
}

func NewAdminService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, m mailer.Mailer) AdminService {
	return &adminService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		mailer:    m,
	}
}

// ===== ORGANIZER ACCOUNT MANAGEMENT =====

// CreateOrganizer provisions an organizer account with a generated temporary
// password. The password is returned once and mailed, never stored here.
func (s *adminService) CreateOrganizer(ctx context.Context, req *CreateOrganizerRequest, adminID string) (*OrganizerResponse, error) {
	s.logger.Info("Creating organizer account", "email", req.Email, "admin_id", adminID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, adminID, "create organizer"); err != nil {
		return nil, err
	}

	exists, err := s.repo.User().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	password, err := generatePassword()
	if err != nil {
		return nil, err
	}

	organizer := &models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		Role:         models.RoleOrganizer,
		OrgName:      &req.OrgName,
		OrgCategory:  req.OrgCategory,
		ContactEmail: req.ContactEmail,
		WebhookURL:   req.WebhookURL,
	}

	if err := s.repo.User().Create(ctx, organizer, password); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create organizer: %w", err)
	}

	s.logger.Info("Organizer created", "organizer_id", organizer.ID, "admin_id", adminID)

	if err := s.mailer.SendOrganizerCredentials(ctx, organizer.Email, organizer.FullName, password); err != nil {
		s.logger.Warn("Failed to send credentials email", "organizer_id", organizer.ID, "error", err)
	}

	return &OrganizerResponse{User: organizer, TempPassword: password}, nil
}

func (s *adminService) ListOrganizers(ctx context.Context, filters repositories.UserFilters, adminID string) ([]*OrganizerResponse, int64, error) {
	if err := s.requireAdmin(ctx, adminID, "list organizers"); err != nil {
		return nil, 0, err
	}

	organizerRole := models.RoleOrganizer
	filters.Role = &organizerRole

	users, total, err := s.repo.User().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list organizers: %w", err)
	}

	responses := make([]*OrganizerResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, &OrganizerResponse{User: u})
	}

	return responses, total, nil
}

func (s *adminService) SetOrganizerDisabled(ctx context.Context, organizerID string, disabled bool, adminID string) error {
	s.logger.Info("Setting organizer disabled", "organizer_id", organizerID, "disabled", disabled, "admin_id", adminID)

	if err := s.requireAdmin(ctx, adminID, "disable organizer"); err != nil {
		return err
	}
	if _, err := s.getOrganizer(ctx, organizerID); err != nil {
		return err
	}

	if err := s.repo.User().SetDisabled(ctx, organizerID, disabled); err != nil {
		return fmt.Errorf("failed to set disabled flag: %w", err)
	}

	return nil
}

// SetOrganizerArchived toggles the archive flag. Archived accounts cannot
// log in; their events and data stay in place for a later restore.
func (s *adminService) SetOrganizerArchived(ctx context.Context, organizerID string, archived bool, adminID string) error {
	s.logger.Info("Setting organizer archived", "organizer_id", organizerID, "archived", archived, "admin_id", adminID)

	if err := s.requireAdmin(ctx, adminID, "archive organizer"); err != nil {
		return err
	}
	if _, err := s.getOrganizer(ctx, organizerID); err != nil {
		return err
	}

	if err := s.repo.User().SetArchived(ctx, organizerID, archived); err != nil {
		return fmt.Errorf("failed to set archived flag: %w", err)
	}

	return nil
}

// DeleteOrganizer removes the account and everything hanging off it: the
// organizer's events with their registrations and tickets, queued reset
// requests, and the organizer's entry in every participant's followed list.
func (s *adminService) DeleteOrganizer(ctx context.Context, organizerID string, adminID string) error {
	s.logger.Info("Deleting organizer", "organizer_id", organizerID, "admin_id", adminID)

	if err := s.requireAdmin(ctx, adminID, "delete organizer"); err != nil {
		return err
	}
	if _, err := s.getOrganizer(ctx, organizerID); err != nil {
		return err
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		events, _, err := txRepo.Event().GetByOrganizer(ctx, nil, organizerID, repositories.EventFilters{})
		if err != nil {
			return fmt.Errorf("failed to list organizer events: %w", err)
		}

		for _, event := range events {
			if event.Status == models.StatusPublished || event.Status == models.StatusOngoing {
				if err := txRepo.Event().UpdateStatus(ctx, nil, event.ID, models.StatusClosed); err != nil {
					return fmt.Errorf("failed to close event %d: %w", event.ID, err)
				}
			}
			if err := txRepo.Ticket().DeleteByEvent(ctx, nil, event.ID); err != nil {
				return fmt.Errorf("failed to delete tickets of event %d: %w", event.ID, err)
			}
			if err := txRepo.Registration().DeleteByEvent(ctx, nil, event.ID); err != nil {
				return fmt.Errorf("failed to delete registrations of event %d: %w", event.ID, err)
			}
			if err := txRepo.Event().Delete(ctx, nil, event.ID); err != nil {
				return fmt.Errorf("failed to delete event %d: %w", event.ID, err)
			}
		}

		if err := txRepo.PasswordReset().DeleteByOrganizer(ctx, nil, organizerID); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return err
	}

	if err := s.repo.User().RemoveFollowedOrganizer(ctx, organizerID); err != nil {
		return fmt.Errorf("failed to prune follower lists: %w", err)
	}

	if err := s.repo.User().Delete(ctx, organizerID); err != nil {
		return fmt.Errorf("failed to delete organizer account: %w", err)
	}

	s.logger.Info("Organizer deleted", "organizer_id", organizerID)
	return nil
}

// ===== RESET QUEUE =====

func (s *adminService) ListResetRequests(ctx context.Context, filters repositories.ResetRequestFilters, adminID string) ([]*ResetRequestResponse, int64, error) {
	if err := s.requireAdmin(ctx, adminID, "list reset requests"); err != nil {
		return nil, 0, err
	}

	requests, total, err := s.repo.PasswordReset().List(ctx, nil, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reset requests: %w", err)
	}

	responses := make([]*ResetRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, &ResetRequestResponse{PasswordResetRequest: r})
	}

	return responses, total, nil
}

// ResolveResetRequest decides a pending request. Approval rotates the
// organizer's credential and returns it once; either way the organizer is
// notified by mail.
func (s *adminService) ResolveResetRequest(ctx context.Context, requestID uint, approve bool, adminID string) (*OrganizerResponse, error) {
	s.logger.Info("Resolving reset request", "request_id", requestID, "approve", approve, "admin_id", adminID)

	if err := s.requireAdmin(ctx, adminID, "resolve reset request"); err != nil {
		return nil, err
	}

	request, err := s.repo.PasswordReset().GetByID(ctx, nil, requestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResetRequestNotFound
		}
		return nil, fmt.Errorf("failed to get reset request: %w", err)
	}

	if request.Status != models.ResetPending {
		return nil, NewStateError("reset request", string(request.Status), "resolve")
	}

	organizer, err := s.getOrganizer(ctx, request.OrganizerID)
	if err != nil {
		return nil, err
	}

	var newPassword string
	if approve {
		if newPassword, err = generatePassword(); err != nil {
			return nil, err
		}
		if err := s.repo.User().SetPassword(ctx, request.OrganizerID, newPassword); err != nil {
			return nil, fmt.Errorf("failed to set new password: %w", err)
		}
		request.Status = models.ResetApproved
	} else {
		request.Status = models.ResetRejected
	}

	now := time.Now()
	request.ResolvedBy = &adminID
	request.ResolvedAt = &now
	if err := s.repo.PasswordReset().Update(ctx, nil, request); err != nil {
		return nil, fmt.Errorf("failed to update reset request: %w", err)
	}

	if err := s.mailer.SendResetOutcome(ctx, organizer.Email, organizer.FullName, approve, newPassword); err != nil {
		s.logger.Warn("Failed to send reset outcome email", "organizer_id", organizer.ID, "error", err)
	}

	s.logger.Info("Reset request resolved", "request_id", requestID, "status", request.Status)

	return &OrganizerResponse{User: organizer, TempPassword: newPassword}, nil
}

// ===== HELPERS =====

func (s *adminService) requireAdmin(ctx context.Context, userID, action string) error {
	isAdmin, err := s.repo.User().HasRole(ctx, userID, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("permission check failed: %w", err)
	}
	if !isAdmin {
		return NewPermissionError(userID, 0, "admin", action, "requires admin role")
	}
	return nil
}

func (s *adminService) getOrganizer(ctx context.Context, organizerID string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, organizerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get organizer: %w", err)
	}
	if user.Role != models.RoleOrganizer {
		return nil, ErrUserNotFound
	}
	return user, nil
}
