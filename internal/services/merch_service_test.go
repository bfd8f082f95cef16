package services

import (
	"context"
	"testing"

	"github.com/UniFest-2025/event-service/internal/events"
	"github.com/UniFest-2025/event-service/internal/mailer"
	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/validator"
)

func newTestMerchService(repo *stubRepo) MerchService {
	logger := testLogger()
	return NewMerchService(repo, nil, logger, validator.New(), events.NewMockEventPublisher(logger), mailer.NopMailer{})
}

func TestApproveOrderKeepsRegistrationStanding(t *testing.T) {
	repo := newStubRepo()
	repo.event.byID[5] = &models.Event{
		ID:        5,
		EventType: models.EventMerchandise,
		Status:    models.StatusPublished,
		CreatedBy: "org-1",
		ItemStock: 10,
	}
	repo.event.decrementOK = true
	repo.registration.byID[9] = &models.Registration{
		ID:                 9,
		EventID:            5,
		ParticipantID:      "part-1",
		Status:             models.RegistrationPendingApproval,
		MerchPaymentStatus: models.MerchPaymentPendingApproval,
		MerchQuantity:      2,
	}
	repo.user.byID["part-1"] = &models.User{ID: "part-1", FullName: "Pat", Email: "pat@example.com"}

	svc := newTestMerchService(repo)

	resp, err := svc.ApproveOrder(context.Background(), 9, "org-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Registration.Status != models.RegistrationRegistered {
		t.Errorf("expected status %q, got %q", models.RegistrationRegistered, resp.Registration.Status)
	}
	if resp.Registration.PaymentStatus != models.PaymentPaid {
		t.Errorf("expected payment status %q, got %q", models.PaymentPaid, resp.Registration.PaymentStatus)
	}
	if resp.Registration.MerchPaymentStatus != models.MerchPaymentApproved {
		t.Errorf("expected merch status %q, got %q", models.MerchPaymentApproved, resp.Registration.MerchPaymentStatus)
	}
	if len(repo.event.decrements) != 1 || repo.event.decrements[0] != 2 {
		t.Errorf("expected one stock decrement of 2, got %v", repo.event.decrements)
	}
	if resp.Ticket == nil {
		t.Fatal("expected a ticket to be issued")
	}
	if resp.Registration.TicketID == nil || *resp.Registration.TicketID != resp.Ticket.TicketID {
		t.Error("expected registration to link the issued ticket")
	}
}

func TestPurchaseCreatesStandingRegistration(t *testing.T) {
	repo := newStubRepo()
	repo.event.byID[5] = &models.Event{
		ID:          5,
		EventType:   models.EventMerchandise,
		Status:      models.StatusPublished,
		Eligibility: models.EligibilityAll,
		CreatedBy:   "org-1",
		ItemStock:   10,
	}
	repo.event.decrementOK = true
	repo.user.byID["part-1"] = &models.User{ID: "part-1", FullName: "Pat", Email: "pat@example.com"}

	svc := newTestMerchService(repo)

	resp, err := svc.Purchase(context.Background(), 5, &PurchaseRequest{Quantity: 1}, "part-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Registration.Status != models.RegistrationRegistered {
		t.Errorf("expected status %q, got %q", models.RegistrationRegistered, resp.Registration.Status)
	}
	if resp.Registration.PaymentStatus != models.PaymentPaid {
		t.Errorf("expected payment status %q, got %q", models.PaymentPaid, resp.Registration.PaymentStatus)
	}
}
