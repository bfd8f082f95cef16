package services

import (
	"context"
	"testing"

	"github.com/UniFest-2025/event-service/internal/mailer"
	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/validator"
)

func TestDeleteOrganizerCascades(t *testing.T) {
	repo := newStubRepo()
	repo.user.admins["admin-1"] = true
	repo.user.byID["org-9"] = &models.User{ID: "org-9", Role: models.RoleOrganizer}
	repo.event.byOrganizer = []*models.Event{
		{ID: 4, Status: models.StatusPublished, CreatedBy: "org-9"},
		{ID: 7, Status: models.StatusDraft, CreatedBy: "org-9"},
	}

	svc := NewAdminService(repo, nil, testLogger(), validator.New(), mailer.NopMailer{})

	if err := svc.DeleteOrganizer(context.Background(), "org-9", "admin-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := repo.registration.deletedEvents; len(got) != 2 || got[0] != 4 || got[1] != 7 {
		t.Errorf("expected registrations of events 4 and 7 deleted, got %v", got)
	}
	if got := repo.ticket.deletedEvents; len(got) != 2 || got[0] != 4 || got[1] != 7 {
		t.Errorf("expected tickets of events 4 and 7 deleted, got %v", got)
	}
	if got := repo.event.deletedIDs; len(got) != 2 {
		t.Errorf("expected both events deleted, got %v", got)
	}
	if got := repo.event.closedIDs; len(got) != 1 || got[0] != 4 {
		t.Errorf("expected only the published event closed first, got %v", got)
	}
	if got := repo.passwordReset.deletedOrganizers; len(got) != 1 || got[0] != "org-9" {
		t.Errorf("expected reset requests cleared for org-9, got %v", got)
	}
	if got := repo.user.prunedFollowIDs; len(got) != 1 || got[0] != "org-9" {
		t.Errorf("expected follow lists pruned of org-9, got %v", got)
	}
	if got := repo.user.deletedIDs; len(got) != 1 || got[0] != "org-9" {
		t.Errorf("expected the account deleted, got %v", got)
	}
}
