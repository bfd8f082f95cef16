package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
	"github.com/UniFest-2025/event-service/internal/validator"
)

type analyticsService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAnalyticsService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) AnalyticsService {
	return &analyticsService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *analyticsService) GetEventStats(ctx context.Context, eventID uint, userID string) (*repositories.EventStats, error) {
	if err := requireEventOwner(ctx, s.repo, eventID, userID, "view stats"); err != nil {
		return nil, err
	}

	stats, err := s.repo.Analytics().GetEventStats(ctx, nil, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event stats: %w", err)
	}

	return stats, nil
}

func (s *analyticsService) GetOrganizerStats(ctx context.Context, organizerID string, userID string) (*repositories.OrganizerStats, error) {
	if organizerID != userID {
		isAdmin, err := s.repo.User().HasRole(ctx, userID, models.RoleAdmin)
		if err != nil {
			return nil, fmt.Errorf("permission check failed: %w", err)
		}
		if !isAdmin {
			return nil, NewPermissionError(userID, 0, "stats", "view", "not your dashboard")
		}
	}

	stats, err := s.repo.Analytics().GetOrganizerStats(ctx, nil, organizerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get organizer stats: %w", err)
	}

	return stats, nil
}

func (s *analyticsService) GetPlatformStats(ctx context.Context, userID string) (*repositories.PlatformStats, error) {
	isAdmin, err := s.repo.User().HasRole(ctx, userID, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("permission check failed: %w", err)
	}
	if !isAdmin {
		return nil, NewPermissionError(userID, 0, "stats", "view platform totals", "requires admin role")
	}

	stats, err := s.repo.Analytics().GetPlatformStats(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get platform stats: %w", err)
	}

	return stats, nil
}
