package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/UniFest-2025/event-service/internal/events"
	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/validator"
)

func TestAppendAuditEntry(t *testing.T) {
	now := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)

	t.Run("append to empty log", func(t *testing.T) {
		data, err := appendAuditEntry(nil, models.AuditEntry{
			Action: models.AuditCheckin,
			By:     "org-1",
			Reason: "gate scanner offline",
			At:     now,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var entries []models.AuditEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			t.Fatalf("failed to decode log: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(entries))
		}
		if entries[0].Action != models.AuditCheckin || entries[0].By != "org-1" {
			t.Errorf("unexpected entry: %+v", entries[0])
		}
	})

	t.Run("entries accumulate", func(t *testing.T) {
		log, err := appendAuditEntry(nil, models.AuditEntry{Action: models.AuditCheckin, By: "org-1", At: now})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		log, err = appendAuditEntry(log, models.AuditEntry{Action: models.AuditCheckout, By: "org-1", Reason: "scanned the wrong ticket", At: now.Add(time.Minute)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var entries []models.AuditEntry
		if err := json.Unmarshal(log, &entries); err != nil {
			t.Fatalf("failed to decode log: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[1].Action != models.AuditCheckout {
			t.Errorf("expected checkout second, got %s", entries[1].Action)
		}
	})

	t.Run("corrupt log is rejected", func(t *testing.T) {
		if _, err := appendAuditEntry([]byte("not json"), models.AuditEntry{Action: models.AuditCheckin}); err == nil {
			t.Error("expected an error for a corrupt log")
		}
	})
}

func TestQRPayloadRoundTrip(t *testing.T) {
	payload := models.QRPayload{
		TicketID:         models.TicketIDPrefix + "abc-123",
		EventID:          7,
		EventName:        "Hack Night",
		ParticipantID:    "user-42",
		ParticipantName:  "Asha Rao",
		ParticipantEmail: "asha@example.com",
		MerchSize:        "M",
		MerchQuantity:    2,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded models.QRPayload
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded != payload {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, payload)
	}
}

func TestScanPinnedToEvent(t *testing.T) {
	newService := func(repo *stubRepo) TicketService {
		logger := testLogger()
		return NewTicketService(repo, nil, logger, validator.New(), events.NewMockEventPublisher(logger))
	}

	payload, err := json.Marshal(models.QRPayload{TicketID: "FEST-scope", EventID: 2})
	if err != nil {
		t.Fatalf("failed to build payload: %v", err)
	}

	t.Run("ticket from another event is rejected", func(t *testing.T) {
		repo := newStubRepo()
		repo.ticket.byTicketID["FEST-scope"] = &models.Ticket{TicketID: "FEST-scope", EventID: 2, RegistrationID: 1}
		svc := newService(repo)

		pinned := uint(3)
		resp, err := svc.Scan(context.Background(), &ScanRequest{QRText: string(payload), EventID: &pinned}, "org-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Result != ScanResultWrongEvent {
			t.Errorf("expected result %q, got %q", ScanResultWrongEvent, resp.Result)
		}
	})

	t.Run("matching event checks in", func(t *testing.T) {
		repo := newStubRepo()
		repo.ticket.byTicketID["FEST-scope"] = &models.Ticket{TicketID: "FEST-scope", EventID: 2, RegistrationID: 1}
		repo.ticket.markUsedOK = true
		repo.event.byID[2] = &models.Event{ID: 2, CreatedBy: "org-1"}
		repo.registration.byID[1] = &models.Registration{ID: 1, EventID: 2}
		svc := newService(repo)

		pinned := uint(2)
		resp, err := svc.Scan(context.Background(), &ScanRequest{QRText: string(payload), EventID: &pinned}, "org-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Result != ScanResultCheckedIn {
			t.Errorf("expected result %q, got %q", ScanResultCheckedIn, resp.Result)
		}
	})
}
