package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/validator"
)

func TestSubmitFeedbackEligibility(t *testing.T) {
	newService := func(event *models.Event, registrations []*models.Registration) FeedbackService {
		repo := newStubRepo()
		repo.event.byID[event.ID] = event
		repo.registration.byParticipant = registrations
		return NewFeedbackService(repo, nil, testLogger(), validator.New())
	}

	req := &FeedbackCreateRequest{Rating: 4}
	held := []*models.Registration{{EventID: 6, ParticipantID: "part-1", Status: models.RegistrationRegistered}}

	t.Run("closed event accepts", func(t *testing.T) {
		svc := newService(&models.Event{ID: 6, Status: models.StatusClosed, EndsAt: time.Now().Add(time.Hour)}, held)
		if err := svc.Submit(context.Background(), 6, req, "part-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("ended but not closed accepts", func(t *testing.T) {
		svc := newService(&models.Event{ID: 6, Status: models.StatusOngoing, EndsAt: time.Now().Add(-time.Hour)}, held)
		if err := svc.Submit(context.Background(), 6, req, "part-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("completed registration accepts before close", func(t *testing.T) {
		completed := []*models.Registration{{EventID: 6, ParticipantID: "part-1", Status: models.RegistrationCompleted}}
		svc := newService(&models.Event{ID: 6, Status: models.StatusOngoing, EndsAt: time.Now().Add(time.Hour)}, completed)
		if err := svc.Submit(context.Background(), 6, req, "part-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("running event rejects", func(t *testing.T) {
		svc := newService(&models.Event{ID: 6, Status: models.StatusPublished, EndsAt: time.Now().Add(time.Hour)}, held)
		err := svc.Submit(context.Background(), 6, req, "part-1")
		var stateErr *StateError
		if !errors.As(err, &stateErr) {
			t.Fatalf("expected a state error, got %v", err)
		}
	})

	t.Run("cancelled registration rejects", func(t *testing.T) {
		cancelled := []*models.Registration{{EventID: 6, ParticipantID: "part-1", Status: models.RegistrationCancelled}}
		svc := newService(&models.Event{ID: 6, Status: models.StatusClosed, EndsAt: time.Now().Add(-time.Hour)}, cancelled)
		err := svc.Submit(context.Background(), 6, req, "part-1")
		var permErr *PermissionError
		if !errors.As(err, &permErr) {
			t.Fatalf("expected a permission error, got %v", err)
		}
	})
}
