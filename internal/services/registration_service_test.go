package services

import (
	"context"
	"testing"

	"github.com/UniFest-2025/event-service/internal/events"
	"github.com/UniFest-2025/event-service/internal/mailer"
	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/validator"
)

func newTestRegistrationService(repo *stubRepo) RegistrationService {
	logger := testLogger()
	return NewRegistrationService(repo, nil, logger, validator.New(), events.NewMockEventPublisher(logger), mailer.NopMailer{})
}

func TestRegisterSettlesPayment(t *testing.T) {
	repo := newStubRepo()
	repo.event.byID[3] = &models.Event{
		ID:              3,
		EventType:       models.EventNormal,
		Status:          models.StatusPublished,
		Eligibility:     models.EligibilityAll,
		RegistrationFee: 250,
	}
	repo.user.byID["part-1"] = &models.User{ID: "part-1", FullName: "Pat", Email: "pat@example.com"}

	svc := newTestRegistrationService(repo)

	resp, err := svc.Register(context.Background(), 3, &RegisterRequest{}, "part-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Registration.PaymentStatus != models.PaymentPaid {
		t.Errorf("expected payment status %q on a paid event, got %q", models.PaymentPaid, resp.Registration.PaymentStatus)
	}
	if resp.Registration.Status != models.RegistrationRegistered {
		t.Errorf("expected status %q, got %q", models.RegistrationRegistered, resp.Registration.Status)
	}
	if resp.Ticket == nil {
		t.Fatal("expected a ticket to be issued")
	}
}

func TestCancelAfterEventClosed(t *testing.T) {
	repo := newStubRepo()
	repo.event.byID[3] = &models.Event{ID: 3, Status: models.StatusClosed}
	repo.registration.bulkFlips = 1

	svc := newTestRegistrationService(repo)

	if err := svc.Cancel(context.Background(), 3, "part-1"); err != nil {
		t.Fatalf("expected cancellation on a closed event to succeed, got %v", err)
	}
	if repo.registration.bulkTo != models.RegistrationCancelled {
		t.Errorf("expected registrations flipped to %q, got %q", models.RegistrationCancelled, repo.registration.bulkTo)
	}
}
