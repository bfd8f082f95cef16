package validator

import (
	"testing"
	"time"

	"github.com/UniFest-2025/event-service/internal/models"
)

func TestValidateStatusTransition(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name    string
		current models.EventStatus
		next    models.EventStatus
		wantErr bool
	}{
		{"draft to published", models.StatusDraft, models.StatusPublished, false},
		{"published to ongoing", models.StatusPublished, models.StatusOngoing, false},
		{"ongoing to closed", models.StatusOngoing, models.StatusClosed, false},
		{"draft to ongoing skips publish", models.StatusDraft, models.StatusOngoing, true},
		{"draft to closed skips publish", models.StatusDraft, models.StatusClosed, true},
		{"published back to draft", models.StatusPublished, models.StatusDraft, true},
		{"closed to published", models.StatusClosed, models.StatusPublished, true},
		{"closed is terminal", models.StatusClosed, models.StatusOngoing, true},
		{"same status", models.StatusPublished, models.StatusPublished, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidateStatusTransition(tt.current, tt.next)
			if tt.wantErr && len(errs) == 0 {
				t.Errorf("expected transition %s -> %s to be rejected", tt.current, tt.next)
			}
			if !tt.wantErr && len(errs) > 0 {
				t.Errorf("expected transition %s -> %s to be allowed, got %v", tt.current, tt.next, errs)
			}
		})
	}
}

func TestValidatePublishedEdit(t *testing.T) {
	bv := NewBusinessValidator()

	deadline := time.Now().Add(24 * time.Hour)
	limit := 100
	existing := &models.Event{
		Status:               models.StatusPublished,
		RegistrationDeadline: &deadline,
		RegistrationLimit:    &limit,
	}

	t.Run("extending deadline is allowed", func(t *testing.T) {
		later := deadline.Add(48 * time.Hour)
		req := &PublishedEventUpdateRequest{RegistrationDeadline: &later}
		if errs := bv.ValidatePublishedEdit(req, existing); len(errs) > 0 {
			t.Errorf("expected no errors, got %v", errs)
		}
	})

	t.Run("shortening deadline is rejected", func(t *testing.T) {
		earlier := deadline.Add(-time.Hour)
		req := &PublishedEventUpdateRequest{RegistrationDeadline: &earlier}
		errs := bv.ValidatePublishedEdit(req, existing)
		if len(errs) == 0 {
			t.Fatal("expected a validation error")
		}
		if errs[0].Field != "registration_deadline" {
			t.Errorf("expected registration_deadline error, got %s", errs[0].Field)
		}
	})

	t.Run("raising limit is allowed", func(t *testing.T) {
		raised := 200
		req := &PublishedEventUpdateRequest{RegistrationLimit: &raised}
		if errs := bv.ValidatePublishedEdit(req, existing); len(errs) > 0 {
			t.Errorf("expected no errors, got %v", errs)
		}
	})

	t.Run("lowering limit is rejected", func(t *testing.T) {
		lowered := 50
		req := &PublishedEventUpdateRequest{RegistrationLimit: &lowered}
		errs := bv.ValidatePublishedEdit(req, existing)
		if len(errs) == 0 {
			t.Fatal("expected a validation error")
		}
		if errs[0].Field != "registration_limit" {
			t.Errorf("expected registration_limit error, got %s", errs[0].Field)
		}
	})

	t.Run("unlimited event accepts any limit", func(t *testing.T) {
		unlimited := &models.Event{Status: models.StatusPublished}
		newLimit := 10
		req := &PublishedEventUpdateRequest{RegistrationLimit: &newLimit}
		if errs := bv.ValidatePublishedEdit(req, unlimited); len(errs) > 0 {
			t.Errorf("expected no errors, got %v", errs)
		}
	})
}

func TestValidateRegistrationWindow(t *testing.T) {
	bv := NewBusinessValidator()
	now := time.Now()

	iiitParticipant := &models.User{InstitutionType: models.InstitutionIIIT}
	otherParticipant := &models.User{InstitutionType: models.InstitutionOther}

	pastDeadline := now.Add(-time.Hour)
	futureDeadline := now.Add(time.Hour)

	tests := []struct {
		name        string
		event       *models.Event
		participant *models.User
		wantField   string
	}{
		{
			name:        "published open event",
			event:       &models.Event{Status: models.StatusPublished, Eligibility: models.EligibilityAll},
			participant: otherParticipant,
		},
		{
			name:        "ongoing event no longer registers",
			event:       &models.Event{Status: models.StatusOngoing, Eligibility: models.EligibilityAll},
			participant: otherParticipant,
			wantField:   "event",
		},
		{
			name:        "draft event is closed",
			event:       &models.Event{Status: models.StatusDraft, Eligibility: models.EligibilityAll},
			participant: otherParticipant,
			wantField:   "event",
		},
		{
			name:        "restricted event blocks outsiders",
			event:       &models.Event{Status: models.StatusPublished, Eligibility: models.EligibilityIIIT},
			participant: otherParticipant,
			wantField:   "eligibility",
		},
		{
			name:        "restricted event admits insiders",
			event:       &models.Event{Status: models.StatusPublished, Eligibility: models.EligibilityIIIT},
			participant: iiitParticipant,
		},
		{
			name: "passed deadline",
			event: &models.Event{
				Status:               models.StatusPublished,
				Eligibility:          models.EligibilityAll,
				RegistrationDeadline: &pastDeadline,
			},
			participant: otherParticipant,
			wantField:   "registration_deadline",
		},
		{
			name: "future deadline",
			event: &models.Event{
				Status:               models.StatusPublished,
				Eligibility:          models.EligibilityAll,
				RegistrationDeadline: &futureDeadline,
			},
			participant: otherParticipant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidateRegistrationWindow(tt.event, tt.participant, now)
			if tt.wantField == "" {
				if len(errs) > 0 {
					t.Errorf("expected no errors, got %v", errs)
				}
				return
			}
			if len(errs) == 0 {
				t.Fatalf("expected an error on field %s", tt.wantField)
			}
			if errs[0].Field != tt.wantField {
				t.Errorf("expected field %s, got %s", tt.wantField, errs[0].Field)
			}
		})
	}
}

func TestValidateFormResponses(t *testing.T) {
	bv := NewBusinessValidator()

	fields := []models.CustomFormField{
		{ID: "dietary", Label: "Dietary preference", Type: models.FormFieldText, Required: true},
		{ID: "tshirt", Label: "T-shirt size", Type: models.FormFieldDropdown, Required: false},
	}

	t.Run("required field present", func(t *testing.T) {
		responses := map[string]interface{}{"dietary": "vegetarian"}
		if errs := bv.ValidateFormResponses(fields, responses); len(errs) > 0 {
			t.Errorf("expected no errors, got %v", errs)
		}
	})

	t.Run("required field missing", func(t *testing.T) {
		errs := bv.ValidateFormResponses(fields, map[string]interface{}{})
		if len(errs) != 1 || errs[0].Field != "dietary" {
			t.Errorf("expected one error on dietary, got %v", errs)
		}
	})

	t.Run("empty string counts as missing", func(t *testing.T) {
		responses := map[string]interface{}{"dietary": ""}
		if errs := bv.ValidateFormResponses(fields, responses); len(errs) != 1 {
			t.Errorf("expected one error, got %v", errs)
		}
	})

	t.Run("optional field may be omitted", func(t *testing.T) {
		responses := map[string]interface{}{"dietary": "vegan"}
		if errs := bv.ValidateFormResponses(fields, responses); len(errs) > 0 {
			t.Errorf("expected no errors, got %v", errs)
		}
	})

	t.Run("file response without data", func(t *testing.T) {
		fileFields := []models.CustomFormField{
			{ID: "id_card", Label: "ID card", Type: models.FormFieldFile, Required: true},
		}
		responses := map[string]interface{}{
			"id_card": map[string]interface{}{"name": "card.png"},
		}
		errs := bv.ValidateFormResponses(fileFields, responses)
		if len(errs) != 1 || errs[0].Rule != "file_payload" {
			t.Errorf("expected a file_payload error, got %v", errs)
		}
	})
}

func TestValidateMerchSelection(t *testing.T) {
	bv := NewBusinessValidator()

	sizes := []string{"S", "M", "L"}
	colors := []string{"black", "white"}

	strPtr := func(s string) *string { return &s }

	tests := []struct {
		name    string
		size    *string
		color   *string
		wantErr bool
	}{
		{"valid selection", strPtr("M"), strPtr("black"), false},
		{"unknown size", strPtr("XXL"), strPtr("black"), true},
		{"unknown color", strPtr("M"), strPtr("red"), true},
		{"nil selections pass", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidateMerchSelection(sizes, colors, tt.size, tt.color)
			if tt.wantErr && len(errs) == 0 {
				t.Error("expected a validation error")
			}
			if !tt.wantErr && len(errs) > 0 {
				t.Errorf("expected no errors, got %v", errs)
			}
		})
	}

	t.Run("unconfigured lists accept anything", func(t *testing.T) {
		if errs := bv.ValidateMerchSelection(nil, nil, strPtr("huge"), strPtr("plaid")); len(errs) > 0 {
			t.Errorf("expected no errors, got %v", errs)
		}
	})
}

func TestValidateCustomFormFields(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("valid fields", func(t *testing.T) {
		fields := []models.CustomFormField{
			{ID: "a", Label: "A", Type: models.FormFieldText},
			{ID: "b", Label: "B", Type: models.FormFieldDropdown, Options: []string{"x", "y"}},
		}
		if errs := bv.ValidateCustomFormFields(fields); len(errs) > 0 {
			t.Errorf("expected no errors, got %v", errs)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		fields := []models.CustomFormField{{Label: "A", Type: models.FormFieldText}}
		if errs := bv.ValidateCustomFormFields(fields); len(errs) == 0 {
			t.Error("expected a validation error")
		}
	})

	t.Run("duplicate ids", func(t *testing.T) {
		fields := []models.CustomFormField{
			{ID: "a", Label: "A", Type: models.FormFieldText},
			{ID: "a", Label: "Also A", Type: models.FormFieldText},
		}
		errs := bv.ValidateCustomFormFields(fields)
		if len(errs) != 1 || errs[0].Rule != "unique" {
			t.Errorf("expected a unique error, got %v", errs)
		}
	})
}
