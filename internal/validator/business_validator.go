package validator

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/UniFest-2025/event-service/internal/models"
)

// MaxEmbeddedFileBytes caps embedded-data file responses and payment proofs
// (decoded size).
const MaxEmbeddedFileBytes = 2 << 20 // 2 MiB

// BusinessValidator handles business rule validation.
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator.
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()
	registerCustomRules(validate)

	return &BusinessValidator{validate: validate}
}

// Validate validates struct tags for any struct.
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateStatusTransition validates event lifecycle transitions. The machine
// is strictly one-way: draft -> published -> ongoing -> closed.
func (bv *BusinessValidator) ValidateStatusTransition(currentStatus, newStatus models.EventStatus) ValidationErrors {
	allowedTransitions := map[models.EventStatus]models.EventStatus{
		models.StatusDraft:     models.StatusPublished,
		models.StatusPublished: models.StatusOngoing,
		models.StatusOngoing:   models.StatusClosed,
	}

	if next, ok := allowedTransitions[currentStatus]; !ok || next != newStatus {
		return ValidationErrors{{
			Field:   "status",
			Message: fmt.Sprintf("cannot transition from %s to %s", currentStatus, newStatus),
			Value:   newStatus,
			Rule:    "status_transition",
		}}
	}

	return nil
}

// ValidatePublishedEdit validates the restricted field edits allowed on a
// published event: description freely, deadline extended only, limit raised
// only. Violations fail; nothing is clamped.
func (bv *BusinessValidator) ValidatePublishedEdit(req *PublishedEventUpdateRequest, existing *models.Event) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.RegistrationDeadline != nil && existing.RegistrationDeadline != nil &&
		req.RegistrationDeadline.Before(*existing.RegistrationDeadline) {
		errors = append(errors, ValidationError{
			Field:   "registration_deadline",
			Message: "deadline of a published event can only be extended",
			Value:   req.RegistrationDeadline,
			Rule:    "business_logic",
		})
	}

	if req.RegistrationLimit != nil {
		if existing.RegistrationLimit != nil && *req.RegistrationLimit < *existing.RegistrationLimit {
			errors = append(errors, ValidationError{
				Field:   "registration_limit",
				Message: "limit of a published event can only be increased",
				Value:   *req.RegistrationLimit,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// ValidateRegistrationWindow validates eligibility and deadline for a
// registration or purchase attempt.
func (bv *BusinessValidator) ValidateRegistrationWindow(event *models.Event, participant *models.User, now time.Time) ValidationErrors {
	var errors ValidationErrors

	if event.Status != models.StatusPublished {
		errors = append(errors, ValidationError{
			Field:   "event",
			Message: "event is not open for registration",
			Value:   event.Status,
			Rule:    "business_logic",
		})
	}

	if event.Eligibility == models.EligibilityIIIT && participant.InstitutionType != models.InstitutionIIIT {
		errors = append(errors, ValidationError{
			Field:   "eligibility",
			Message: "event is restricted to IIIT participants",
			Value:   participant.InstitutionType,
			Rule:    "business_logic",
		})
	}

	if !event.RegistrationOpen(now) {
		errors = append(errors, ValidationError{
			Field:   "registration_deadline",
			Message: "registration deadline has passed",
			Value:   event.RegistrationDeadline,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateFormResponses checks every required custom-form field has a
// non-empty response and caps embedded file payloads.
func (bv *BusinessValidator) ValidateFormResponses(fields []models.CustomFormField, responses map[string]interface{}) ValidationErrors {
	var errors ValidationErrors

	for _, field := range fields {
		value, present := responses[field.ID]

		if !present || isEmptyResponse(value) {
			if field.Required {
				errors = append(errors, ValidationError{
					Field:   field.ID,
					Message: fmt.Sprintf("%q is required", field.Label),
					Rule:    "required",
				})
			}
			continue
		}

		if field.Type == models.FormFieldFile {
			errors = append(errors, validateFileResponse(field, value)...)
		}
	}

	return errors
}

func isEmptyResponse(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []interface{}:
		return len(v) == 0
	case map[string]interface{}:
		return len(v) == 0
	default:
		return false
	}
}

func validateFileResponse(field models.CustomFormField, value interface{}) ValidationErrors {
	payload, ok := value.(map[string]interface{})
	if !ok {
		return ValidationErrors{{
			Field:   field.ID,
			Message: fmt.Sprintf("%q must be an embedded file payload", field.Label),
			Rule:    "file_payload",
		}}
	}

	data, _ := payload["data"].(string)
	if data == "" {
		return ValidationErrors{{
			Field:   field.ID,
			Message: fmt.Sprintf("%q file data is missing", field.Label),
			Rule:    "file_payload",
		}}
	}

	if base64.StdEncoding.DecodedLen(len(data)) > MaxEmbeddedFileBytes {
		return ValidationErrors{{
			Field:   field.ID,
			Message: fmt.Sprintf("%q exceeds the %d byte file limit", field.Label, MaxEmbeddedFileBytes),
			Rule:    "file_size",
		}}
	}

	return nil
}

// ValidateFileUpload caps a direct embedded file upload (payment proofs).
func (bv *BusinessValidator) ValidateFileUpload(upload *FileUpload) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(upload)...)

	if upload != nil && base64.StdEncoding.DecodedLen(len(upload.Data)) > MaxEmbeddedFileBytes {
		errors = append(errors, ValidationError{
			Field:   "payment_proof",
			Message: fmt.Sprintf("file exceeds the %d byte limit", MaxEmbeddedFileBytes),
			Rule:    "file_size",
		})
	}

	return errors
}

// ValidateMerchSelection checks the chosen variant against the event's
// configured option sets. Membership is enforced only when the event actually
// configures the respective list.
func (bv *BusinessValidator) ValidateMerchSelection(sizes, colors []string, size, color *string) ValidationErrors {
	var errors ValidationErrors

	if size != nil && len(sizes) > 0 && !contains(sizes, *size) {
		errors = append(errors, ValidationError{
			Field:   "size",
			Message: fmt.Sprintf("size %q is not offered for this item", *size),
			Value:   *size,
			Rule:    "business_logic",
		})
	}

	if color != nil && len(colors) > 0 && !contains(colors, *color) {
		errors = append(errors, ValidationError{
			Field:   "color",
			Message: fmt.Sprintf("color %q is not offered for this item", *color),
			Value:   *color,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateCustomFormFields checks the organizer-defined field descriptors.
func (bv *BusinessValidator) ValidateCustomFormFields(fields []models.CustomFormField) ValidationErrors {
	var errors ValidationErrors

	seen := make(map[string]bool, len(fields))
	for i, field := range fields {
		if field.ID == "" || field.Label == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("fields[%d]", i),
				Message: "field id and label are required",
				Rule:    "required",
			})
			continue
		}
		if seen[field.ID] {
			errors = append(errors, ValidationError{
				Field:   field.ID,
				Message: "duplicate field id",
				Rule:    "unique",
			})
		}
		seen[field.ID] = true

		switch field.Type {
		case models.FormFieldText, models.FormFieldCheckbox, models.FormFieldFile:
		case models.FormFieldDropdown:
			if len(field.Options) == 0 {
				errors = append(errors, ValidationError{
					Field:   field.ID,
					Message: "dropdown fields need at least one option",
					Rule:    "business_logic",
				})
			}
		default:
			errors = append(errors, ValidationError{
				Field:   field.ID,
				Message: fmt.Sprintf("unknown field type %q", field.Type),
				Rule:    "oneof",
			})
		}
	}

	return errors
}

func contains(options []string, value string) bool {
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}
