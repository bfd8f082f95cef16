package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/UniFest-2025/event-service/internal/events"
	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
	"github.com/UniFest-2025/event-service/internal/validator"
)

type eventService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewEventService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) EventService {
	return &eventService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *eventService) Create(ctx context.Context, req *CreateEventRequest, creatorID string) (*EventResponse, error) {
	s.logger.Info("Creating event", "creator_id", creatorID, "name", req.Name)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	bv := s.validator.GetBusinessValidator()

	// Merchandise events must configure the item
	if req.EventType == models.EventMerchandise && req.ItemDetails == nil {
		return nil, validator.ValidationErrors{{
			Field:   "item_details",
			Message: "merchandise events require item details",
			Rule:    "business_logic",
		}}
	}

	if len(req.CustomForm) > 0 {
		if errs := bv.ValidateCustomFormFields(req.CustomForm); len(errs) > 0 {
			return nil, errs
		}
	}

	isOrganizer, err := s.repo.User().HasRole(ctx, creatorID, models.RoleOrganizer)
	if err != nil {
		return nil, fmt.Errorf("permission check failed: %w", err)
	}
	if !isOrganizer {
		return nil, NewPermissionError(creatorID, 0, "event", "create", "only organizers can create events")
	}

	event := &models.Event{
		Name:                 req.Name,
		Description:          req.Description,
		EventType:            req.EventType,
		Eligibility:          models.EligibilityAll,
		Status:               models.StatusDraft,
		StartsAt:             req.StartsAt,
		EndsAt:               req.EndsAt,
		RegistrationDeadline: req.RegistrationDeadline,
		RegistrationLimit:    req.RegistrationLimit,
		RegistrationFee:      req.RegistrationFee,
		CreatedBy:            creatorID,
	}
	if req.Eligibility != "" {
		event.Eligibility = req.Eligibility
	}

	if event.EventTags, err = marshalJSONField(req.EventTags); err != nil {
		return nil, err
	}
	if event.CustomForm, err = marshalJSONField(req.CustomForm); err != nil {
		return nil, err
	}
	if req.ItemDetails != nil {
		if err := applyItemDetails(event, req.ItemDetails); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Event().Create(ctx, nil, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.logger.Info("Event created", "event_id", event.ID, "creator_id", creatorID)

	return s.buildEventResponse(ctx, event, creatorID), nil
}

func (s *eventService) GetByID(ctx context.Context, id uint, userID string) (*EventResponse, error) {
	event, err := s.repo.Event().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if err := s.checkVisibility(ctx, event, userID); err != nil {
		return nil, err
	}

	return s.buildEventResponse(ctx, event, userID), nil
}

func (s *eventService) GetByIDWithDetails(ctx context.Context, id uint, userID string) (*EventResponse, error) {
	event, err := s.repo.Event().GetByIDWithDetails(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event with details: %w", err)
	}

	if err := s.checkVisibility(ctx, event, userID); err != nil {
		return nil, err
	}

	return s.buildEventResponse(ctx, event, userID), nil
}

func (s *eventService) Update(ctx context.Context, id uint, req *UpdateEventRequest, userID string) (*EventResponse, error) {
	s.logger.Info("Updating event", "event_id", id, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	event, err := s.getOwnedEvent(ctx, id, userID, "update")
	if err != nil {
		return nil, err
	}

	// Full edits are a draft-only privilege
	if event.Status != models.StatusDraft {
		return nil, NewStateError("event", string(event.Status), "update")
	}

	applyDraftUpdate(event, req)
	if req.ItemDetails != nil {
		if err := applyItemDetails(event, req.ItemDetails); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Event().Update(ctx, nil, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return s.buildEventResponse(ctx, event, userID), nil
}

func (s *eventService) UpdatePublished(ctx context.Context, id uint, req *UpdatePublishedEventRequest, userID string) (*EventResponse, error) {
	s.logger.Info("Updating published event", "event_id", id, "user_id", userID)

	event, err := s.getOwnedEvent(ctx, id, userID, "update")
	if err != nil {
		return nil, err
	}

	if event.Status != models.StatusPublished {
		return nil, NewStateError("event", string(event.Status), "update restricted fields")
	}

	if errs := s.validator.GetBusinessValidator().ValidatePublishedEdit(req, event); len(errs) > 0 {
		return nil, errs
	}

	if req.Description != nil {
		event.Description = req.Description
	}
	if req.RegistrationDeadline != nil {
		event.RegistrationDeadline = req.RegistrationDeadline
	}
	if req.RegistrationLimit != nil {
		event.RegistrationLimit = req.RegistrationLimit
	}

	if err := s.repo.Event().Update(ctx, nil, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return s.buildEventResponse(ctx, event, userID), nil
}

func (s *eventService) UpdateCustomForm(ctx context.Context, id uint, req *UpdateCustomFormRequest, userID string) (*EventResponse, error) {
	s.logger.Info("Updating custom form", "event_id", id, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if errs := s.validator.GetBusinessValidator().ValidateCustomFormFields(req.Fields); len(errs) > 0 {
		return nil, errs
	}

	event, err := s.getOwnedEvent(ctx, id, userID, "update")
	if err != nil {
		return nil, err
	}

	// The form freezes once responses exist so they stay interpretable
	if event.Status != models.StatusDraft {
		return nil, NewStateError("event", string(event.Status), "edit custom form")
	}
	_, total, err := s.repo.Registration().GetByEvent(ctx, nil, event.ID, repositories.RegistrationFilters{Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to count registrations: %w", err)
	}
	if total > 0 {
		return nil, NewStateError("event", "has registrations", "edit custom form")
	}

	if event.CustomForm, err = marshalJSONField(req.Fields); err != nil {
		return nil, err
	}

	if err := s.repo.Event().Update(ctx, nil, event); err != nil {
		return nil, fmt.Errorf("failed to update custom form: %w", err)
	}

	return s.buildEventResponse(ctx, event, userID), nil
}

func (s *eventService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting event", "event_id", id, "user_id", userID)

	event, err := s.getOwnedEvent(ctx, id, userID, "delete")
	if err != nil {
		return err
	}

	if event.Status != models.StatusDraft {
		return NewStateError("event", string(event.Status), "delete")
	}

	if err := s.repo.Event().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	return nil
}

// ===== LIST AND SEARCH OPERATIONS =====

func (s *eventService) List(ctx context.Context, filters repositories.EventFilters, userID string) (*EventListResponse, error) {
	// Outside listings never include drafts
	if filters.Status == nil {
		published := models.StatusPublished
		isOrganizerView := false
		if filters.CreatedBy != nil && *filters.CreatedBy == userID {
			isOrganizerView = true
		}
		if !isOrganizerView {
			filters.Status = &published
		}
	}

	eventsList, total, err := s.repo.Event().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return s.buildEventListResponse(ctx, eventsList, total, filters.Limit, filters.Offset, userID), nil
}

func (s *eventService) GetByOrganizer(ctx context.Context, organizerID string, filters repositories.EventFilters) (*EventListResponse, error) {
	eventsList, total, err := s.repo.Event().GetByOrganizer(ctx, nil, organizerID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizer events: %w", err)
	}

	return s.buildEventListResponse(ctx, eventsList, total, filters.Limit, filters.Offset, organizerID), nil
}

func (s *eventService) Search(ctx context.Context, query string, filters repositories.EventFilters, userID string) (*EventListResponse, error) {
	if filters.Status == nil {
		published := models.StatusPublished
		filters.Status = &published
	}

	eventsList, total, err := s.repo.Event().Search(ctx, nil, query, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}

	return s.buildEventListResponse(ctx, eventsList, total, filters.Limit, filters.Offset, userID), nil
}

// ===== LIFECYCLE MANAGEMENT =====

func (s *eventService) Publish(ctx context.Context, id uint, userID string) error {
	return s.transition(ctx, id, userID, models.StatusPublished)
}

func (s *eventService) Start(ctx context.Context, id uint, userID string) error {
	return s.transition(ctx, id, userID, models.StatusOngoing)
}

// Close moves the event to its terminal state and completes every
// registration that was still live.
func (s *eventService) Close(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Closing event", "event_id", id, "user_id", userID)

	event, err := s.getOwnedEvent(ctx, id, userID, "close")
	if err != nil {
		return err
	}

	if errs := s.validator.GetBusinessValidator().ValidateStatusTransition(event.Status, models.StatusClosed); len(errs) > 0 {
		return NewStateError("event", string(event.Status), "close")
	}

	var completed int64
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Event().UpdateStatus(ctx, nil, id, models.StatusClosed); err != nil {
			return fmt.Errorf("failed to close event: %w", err)
		}

		completed, err = txRepo.Registration().BulkUpdateStatusByEvent(ctx, nil, id,
			[]models.RegistrationStatus{models.RegistrationRegistered},
			models.RegistrationCompleted)
		if err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Event closed", "event_id", id, "registrations_completed", completed)
	s.publishStatusChange(ctx, event, models.StatusClosed)

	return nil
}

func (s *eventService) transition(ctx context.Context, id uint, userID string, next models.EventStatus) error {
	s.logger.Info("Transitioning event", "event_id", id, "user_id", userID, "next_status", next)

	event, err := s.getOwnedEvent(ctx, id, userID, string(next))
	if err != nil {
		return err
	}

	if errs := s.validator.GetBusinessValidator().ValidateStatusTransition(event.Status, next); len(errs) > 0 {
		return NewStateError("event", string(event.Status), fmt.Sprintf("transition to %s", next))
	}

	if err := s.repo.Event().UpdateStatus(ctx, nil, id, next); err != nil {
		return fmt.Errorf("failed to update event status: %w", err)
	}

	s.publishStatusChange(ctx, event, next)
	return nil
}

func (s *eventService) publishStatusChange(ctx context.Context, event *models.Event, next models.EventStatus) {
	evt := events.NewEvent(events.EventStatusChanged, map[string]interface{}{
		"event_id":   event.ID,
		"event_name": event.Name,
		"from":       event.Status,
		"to":         next,
	})
	if err := s.eventPublisher.Publish(ctx, events.DomainTopic, evt); err != nil {
		s.logger.Error("Failed to publish status change", "event_id", event.ID, "error", err)
	}
}

// ===== PERMISSION CHECKS =====

func (s *eventService) CanEdit(ctx context.Context, eventID uint, userID string) (bool, error) {
	event, err := s.repo.Event().GetByID(ctx, nil, eventID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, ErrEventNotFound
		}
		return false, err
	}

	return s.isOwnerOrAdmin(ctx, event, userID)
}

func (s *eventService) CanDelete(ctx context.Context, eventID uint, userID string) (bool, error) {
	event, err := s.repo.Event().GetByID(ctx, nil, eventID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, ErrEventNotFound
		}
		return false, err
	}

	if event.Status != models.StatusDraft {
		return false, nil
	}

	return s.isOwnerOrAdmin(ctx, event, userID)
}

// ===== HELPERS =====

func (s *eventService) isOwnerOrAdmin(ctx context.Context, event *models.Event, userID string) (bool, error) {
	if event.CreatedBy == userID {
		return true, nil
	}

	isAdmin, err := s.repo.User().HasRole(ctx, userID, models.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("permission check failed: %w", err)
	}

	return isAdmin, nil
}

// getOwnedEvent loads the event and asserts write access in one step
func (s *eventService) getOwnedEvent(ctx context.Context, id uint, userID, action string) (*models.Event, error) {
	event, err := s.repo.Event().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	allowed, err := s.isOwnerOrAdmin(ctx, event, userID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, NewPermissionError(userID, id, "event", action, "not the event owner")
	}

	return event, nil
}

// checkVisibility hides drafts from everyone but the owner and admins. The
// denial is explicit rather than a 404: event ids are not secrets.
func (s *eventService) checkVisibility(ctx context.Context, event *models.Event, userID string) error {
	if event.Status != models.StatusDraft {
		return nil
	}

	allowed, err := s.isOwnerOrAdmin(ctx, event, userID)
	if err != nil {
		return err
	}
	if !allowed {
		return NewPermissionError(userID, event.ID, "event", "read", "draft events are visible to their owner only")
	}

	return nil
}

func (s *eventService) buildEventResponse(ctx context.Context, event *models.Event, userID string) *EventResponse {
	canEdit := event.CreatedBy == userID

	return &EventResponse{
		Event:       event,
		CanEdit:     canEdit,
		CanDelete:   canEdit && event.Status == models.StatusDraft,
		CanRegister: event.Status == models.StatusPublished && event.RegistrationOpen(time.Now()),
	}
}

func (s *eventService) buildEventListResponse(ctx context.Context, eventsList []*models.Event, total int64, limit, offset int, userID string) *EventListResponse {
	responses := make([]*EventResponse, 0, len(eventsList))
	for _, event := range eventsList {
		responses = append(responses, s.buildEventResponse(ctx, event, userID))
	}

	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}

	return &EventListResponse{
		Events: responses,
		Total:  total,
		Page:   page,
		Size:   len(responses),
	}
}

func applyDraftUpdate(event *models.Event, req *UpdateEventRequest) {
	if req.Name != nil {
		event.Name = *req.Name
	}
	if req.Description != nil {
		event.Description = req.Description
	}
	if req.Eligibility != nil {
		event.Eligibility = *req.Eligibility
	}
	if req.StartsAt != nil {
		event.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		event.EndsAt = *req.EndsAt
	}
	if req.RegistrationDeadline != nil {
		event.RegistrationDeadline = req.RegistrationDeadline
	}
	if req.RegistrationLimit != nil {
		event.RegistrationLimit = req.RegistrationLimit
	}
	if req.RegistrationFee != nil {
		event.RegistrationFee = *req.RegistrationFee
	}
	if req.EventTags != nil {
		if tags, err := marshalJSONField(req.EventTags); err == nil {
			event.EventTags = tags
		}
	}
}

func applyItemDetails(event *models.Event, item *validator.ItemDetailsRequest) error {
	var err error
	if event.ItemSizes, err = marshalJSONField(item.Sizes); err != nil {
		return err
	}
	if event.ItemColors, err = marshalJSONField(item.Colors); err != nil {
		return err
	}

	event.ItemStock = item.Stock
	event.ItemInitialStock = item.Stock
	event.ItemPurchaseLimit = item.PurchaseLimit

	return nil
}

func unmarshalStringList(data datatypes.JSON, dest *[]string) error {
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode list field: %w", err)
	}
	return nil
}

func marshalJSONField(value interface{}) (datatypes.JSON, error) {
	if value == nil {
		return nil, nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal field: %w", err)
	}

	return datatypes.JSON(data), nil
}
