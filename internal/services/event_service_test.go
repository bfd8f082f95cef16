package services

import (
	"context"
	"errors"
	"testing"

	"github.com/UniFest-2025/event-service/internal/events"
	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/validator"
)

func newTestEventService(repo *stubRepo) EventService {
	logger := testLogger()
	return NewEventService(repo, nil, logger, validator.New(), events.NewMockEventPublisher(logger))
}

func TestUpdatePublishedOnlyWhilePublished(t *testing.T) {
	repo := newStubRepo()
	repo.event.byID[8] = &models.Event{ID: 8, Status: models.StatusOngoing, CreatedBy: "org-1"}

	svc := newTestEventService(repo)

	_, err := svc.UpdatePublished(context.Background(), 8, &UpdatePublishedEventRequest{}, "org-1")
	var stateErr *StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected a state error for an ongoing event, got %v", err)
	}
}

func TestUpdateCustomFormFrozenByRegistrations(t *testing.T) {
	repo := newStubRepo()
	repo.event.byID[8] = &models.Event{ID: 8, Status: models.StatusDraft, CreatedBy: "org-1"}
	repo.registration.byEventTotal = 1

	svc := newTestEventService(repo)

	req := &UpdateCustomFormRequest{Fields: []models.CustomFormField{{ID: "f1", Label: "Roll number", Type: models.FormFieldText}}}
	_, err := svc.UpdateCustomForm(context.Background(), 8, req, "org-1")
	var stateErr *StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected a state error once registrations exist, got %v", err)
	}
	if stateErr.Current != "has registrations" {
		t.Errorf("expected current state %q, got %q", "has registrations", stateErr.Current)
	}
}
