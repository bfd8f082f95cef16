package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"gorm.io/gorm"

	"github.com/UniFest-2025/event-service/internal/events"
	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
	"github.com/UniFest-2025/event-service/internal/validator"
)

type discussionService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewDiscussionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) DiscussionService {
	return &discussionService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
	}
}

func (s *discussionService) PostMessage(ctx context.Context, eventID uint, req *PostMessageRequest, authorID string) (*MessageResponse, error) {
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

	if event.Status != models.StatusPublished && event.Status != models.StatusOngoing {
		return nil, NewStateError("event", string(event.Status), "post message")
	}

	if req.IsAnnouncement {
		if err := requireEventOwner(ctx, s.repo, eventID, authorID, "post announcement"); err != nil {
			return nil, err
		}
	} else if err := s.checkPostAccess(ctx, event, authorID); err != nil {
		return nil, err
	}

	if req.ParentMessageID != nil {
		parent, err := s.repo.Discussion().GetByID(ctx, nil, *req.ParentMessageID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrMessageNotFound
			}
			return nil, fmt.Errorf("failed to get parent message: %w", err)
		}
		if parent.EventID != eventID {
			return nil, ErrMessageNotFound
		}
	}

	message := &models.DiscussionMessage{
		EventID:         eventID,
		AuthorID:        authorID,
		Content:         req.Content,
		ParentMessageID: req.ParentMessageID,
		IsAnnouncement:  req.IsAnnouncement,
	}

	if err := s.repo.Discussion().Create(ctx, nil, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	message.Render()

	eventType := events.EventNewMessage
	if message.IsAnnouncement {
		eventType = events.EventNewAnnouncement
	}
	s.broadcast(ctx, eventID, eventType, message)

	s.logger.Info("Message posted", "event_id", eventID, "message_id", message.ID, "announcement", message.IsAnnouncement)

	return &MessageResponse{DiscussionMessage: message}, nil
}

func (s *discussionService) GetThread(ctx context.Context, eventID uint, userID string) (*ThreadResponse, error) {
	if _, err := s.repo.Event().GetByID(ctx, nil, eventID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	messages, err := s.repo.Discussion().ListByEvent(ctx, nil, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	roots := BuildThreadTree(messages)

	pinnedRows, err := s.repo.Discussion().ListPinnedByEvent(ctx, nil, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pinned messages: %w", err)
	}

	for _, m := range pinnedRows {
		m.Render()
	}

	return &ThreadResponse{
		Messages: roots,
		Pinned:   pinnedRows,
		Total:    int64(len(messages)),
	}, nil
}

func (s *discussionService) PinMessage(ctx context.Context, messageID uint, pinned bool, userID string) error {
	message, err := s.getMessage(ctx, messageID)
	if err != nil {
		return err
	}

	if err := requireEventOwner(ctx, s.repo, message.EventID, userID, "pin message"); err != nil {
		return err
	}

	message.IsPinned = pinned
	if err := s.repo.Discussion().Update(ctx, nil, message); err != nil {
		return fmt.Errorf("failed to pin message: %w", err)
	}

	message.Render()
	s.broadcast(ctx, message.EventID, events.EventMessagePinned, message)

	return nil
}

// DeleteMessage soft-deletes: the row stays, clients render the placeholder.
func (s *discussionService) DeleteMessage(ctx context.Context, messageID uint, userID string) error {
	message, err := s.getMessage(ctx, messageID)
	if err != nil {
		return err
	}

	if message.AuthorID != userID {
		if err := requireEventOwner(ctx, s.repo, message.EventID, userID, "delete message"); err != nil {
			return err
		}
	}

	message.IsDeleted = true
	if err := s.repo.Discussion().Update(ctx, nil, message); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	message.Render()
	s.broadcast(ctx, message.EventID, events.EventMessageDeleted, message)

	return nil
}

// React toggles the caller's membership in the reaction label's user set.
func (s *discussionService) React(ctx context.Context, messageID uint, req *ReactionRequest, userID string) (*MessageResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	message, err := s.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.IsDeleted {
		return nil, NewStateError("message", "deleted", "react")
	}

	reactions := map[string][]string{}
	if len(message.Reactions) > 0 {
		if err := json.Unmarshal(message.Reactions, &reactions); err != nil {
			return nil, fmt.Errorf("failed to decode reactions: %w", err)
		}
	}

	users := reactions[req.Label]
	idx := -1
	for i, id := range users {
		if id == userID {
			idx = i
			break
		}
	}
	if idx >= 0 {
		users = append(users[:idx], users[idx+1:]...)
	} else {
		users = append(users, userID)
	}
	if len(users) == 0 {
		delete(reactions, req.Label)
	} else {
		reactions[req.Label] = users
	}

	if message.Reactions, err = marshalJSONField(reactions); err != nil {
		return nil, err
	}
	if err := s.repo.Discussion().Update(ctx, nil, message); err != nil {
		return nil, fmt.Errorf("failed to update reactions: %w", err)
	}

	message.Render()
	s.broadcast(ctx, message.EventID, events.EventReactionUpdate, message)

	return &MessageResponse{DiscussionMessage: message}, nil
}

// ===== HELPERS =====

// checkPostAccess admits the owning organizer, admins, and participants
// holding an active registration for the event.
func (s *discussionService) checkPostAccess(ctx context.Context, event *models.Event, userID string) error {
	if event.CreatedBy == userID {
		return nil
	}

	isAdmin, err := s.repo.User().HasRole(ctx, userID, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("permission check failed: %w", err)
	}
	if isAdmin {
		return nil
	}

	if _, err := s.repo.Registration().GetActiveByEventAndParticipant(ctx, nil, event.ID, userID); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewPermissionError(userID, event.ID, "discussion", "post message", "no active registration for this event")
		}
		return fmt.Errorf("failed to check registration: %w", err)
	}

	return nil
}

func (s *discussionService) getMessage(ctx context.Context, messageID uint) (*models.DiscussionMessage, error) {
	message, err := s.repo.Discussion().GetByID(ctx, nil, messageID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return message, nil
}

// broadcast pushes the message onto the event's discussion topic; relay
// subscribers fan it out to connected clients.
func (s *discussionService) broadcast(ctx context.Context, eventID uint, eventType string, message *models.DiscussionMessage) {
	evt := events.NewEvent(eventType, message)
	if err := s.eventPublisher.Publish(ctx, events.DiscussionTopic(eventID), evt); err != nil {
		s.logger.Error("Failed to broadcast message", "event_id", eventID, "type", eventType, "error", err)
	}
}

// BuildThreadTree reassembles the reply tree from the flat row list using an
// adjacency map. Orphaned replies (parent missing from the slice) are
// promoted to roots so nothing silently disappears. Messages render their
// display content on the way through.
func BuildThreadTree(messages []*models.DiscussionMessage) []*models.DiscussionMessage {
	byID := make(map[uint]*models.DiscussionMessage, len(messages))
	for _, m := range messages {
		m.Render()
		m.Replies = nil
		byID[m.ID] = m
	}

	var roots []*models.DiscussionMessage
	for _, m := range messages {
		if m.ParentMessageID == nil {
			roots = append(roots, m)
			continue
		}
		parent, ok := byID[*m.ParentMessageID]
		if !ok {
			roots = append(roots, m)
			continue
		}
		parent.Replies = append(parent.Replies, m)
	}

	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].CreatedAt.Before(roots[j].CreatedAt)
	})

	return roots
}
