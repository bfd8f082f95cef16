package services

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"gorm.io/gorm"

	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
	"github.com/UniFest-2025/event-service/internal/validator"
)

type accountService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAccountService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) AccountService {
	return &accountService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// ===== SELF-SERVICE =====

func (s *accountService) Signup(ctx context.Context, req *SignupRequest) (*models.User, error) {
	s.logger.Info("Creating participant account", "email", req.Email)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.InstitutionType == models.InstitutionIIIT && !hasCampusDomain(req.Email) {
		return nil, validator.ValidationErrors{{
			Field:   "email",
			Message: "IIIT participants must sign up with an institute email address",
			Value:   req.Email,
			Rule:    "business_logic",
		}}
	}

	exists, err := s.repo.User().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	user := &models.User{
		FullName:        req.FullName,
		Email:           req.Email,
		Role:            models.RoleParticipant,
		InstitutionType: req.InstitutionType,
	}
	if user.Interests, err = marshalJSONField(req.Interests); err != nil {
		return nil, err
	}

	if err := s.repo.User().Create(ctx, user, req.Password); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("Participant account created", "user_id", user.ID)
	return user, nil
}

func (s *accountService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return user, nil
}

func (s *accountService) UpdateParticipantProfile(ctx context.Context, userID string, req *UpdateParticipantProfileRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.requireRole(ctx, userID, models.RoleParticipant, "update profile")
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Interests != nil {
		if user.Interests, err = marshalJSONField(req.Interests); err != nil {
			return nil, err
		}
	}

	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

func (s *accountService) UpdateOrganizerProfile(ctx context.Context, userID string, req *UpdateOrganizerProfileRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.requireRole(ctx, userID, models.RoleOrganizer, "update profile")
	if err != nil {
		return nil, err
	}

	if req.OrgName != nil {
		user.OrgName = req.OrgName
	}
	if req.OrgCategory != nil {
		user.OrgCategory = req.OrgCategory
	}
	if req.ContactEmail != nil {
		user.ContactEmail = req.ContactEmail
	}
	if req.WebhookURL != nil {
		user.WebhookURL = req.WebhookURL
	}

	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

// FollowOrganizer toggles membership in the participant's followed set.
func (s *accountService) FollowOrganizer(ctx context.Context, participantID, organizerID string, follow bool) error {
	participant, err := s.requireRole(ctx, participantID, models.RoleParticipant, "follow organizer")
	if err != nil {
		return err
	}

	organizer, err := s.repo.User().GetByID(ctx, organizerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get organizer: %w", err)
	}
	if organizer.Role != models.RoleOrganizer {
		return ErrUserNotFound
	}

	var following []string
	if len(participant.FollowedOrganizers) > 0 {
		if err := json.Unmarshal(participant.FollowedOrganizers, &following); err != nil {
			return fmt.Errorf("failed to decode followed organizers: %w", err)
		}
	}

	idx := -1
	for i, id := range following {
		if id == organizerID {
			idx = i
			break
		}
	}

	switch {
	case follow && idx < 0:
		following = append(following, organizerID)
	case !follow && idx >= 0:
		following = append(following[:idx], following[idx+1:]...)
	default:
		return nil
	}

	if participant.FollowedOrganizers, err = marshalJSONField(following); err != nil {
		return err
	}

	if err := s.repo.User().Update(ctx, participant); err != nil {
		return fmt.Errorf("failed to update followed organizers: %w", err)
	}

	return nil
}

// ===== CREDENTIAL RESET =====

// RequestPasswordReset queues an admin-reviewed reset. One pending request
// per organizer at a time.
func (s *accountService) RequestPasswordReset(ctx context.Context, organizerID string) (*ResetRequestResponse, error) {
	if _, err := s.requireRole(ctx, organizerID, models.RoleOrganizer, "request password reset"); err != nil {
		return nil, err
	}

	if _, err := s.repo.PasswordReset().GetPendingByOrganizer(ctx, nil, organizerID); err == nil {
		return nil, ErrPendingResetExists
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}

	request := &models.PasswordResetRequest{
		OrganizerID: organizerID,
		Status:      models.ResetPending,
	}
	if err := s.repo.PasswordReset().Create(ctx, nil, request); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrPendingResetExists
		}
		return nil, fmt.Errorf("failed to create reset request: %w", err)
	}

	s.logger.Info("Password reset requested", "organizer_id", organizerID, "request_id", request.ID)

	return &ResetRequestResponse{PasswordResetRequest: request}, nil
}

// ===== HELPERS =====

func (s *accountService) requireRole(ctx context.Context, userID string, role models.UserRole, action string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.Role != role {
		return nil, NewPermissionError(userID, 0, "account", action, fmt.Sprintf("requires %s role", role))
	}

	return user, nil
}

// campusDomains are the email suffixes accepted for IIIT participants.
var campusDomains = []string{"@students.iiit.ac.in", "@research.iiit.ac.in"}

func hasCampusDomain(email string) bool {
	for _, domain := range campusDomains {
		if strings.HasSuffix(email, domain) {
			return true
		}
	}
	return false
}

const passwordAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const generatedPasswordLength = 16

// generatePassword draws a random temporary credential from an alphabet with
// the look-alike characters removed.
func generatePassword() (string, error) {
	buf := make([]byte, generatedPasswordLength)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}
