package validator

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes a single violated rule on a single field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates field errors so the caller can render one
// message per violated rule instead of a single generic failure.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// ToValidationErrors converts a go-playground validation result.
func ToValidationErrors(err error) ValidationErrors {
	if err == nil {
		return nil
	}

	var result ValidationErrors
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrors {
			result = append(result, ValidationError{
				Field:   strings.ToLower(fe.Field()),
				Message: messageForTag(fe),
				Value:   fe.Value(),
				Rule:    fe.Tag(),
			})
		}
		return result
	}

	return ValidationErrors{{Field: "request", Message: err.Error(), Rule: "invalid"}}
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "future_date":
		return "must be in the future"
	case "gtefield":
		return fmt.Sprintf("must not be before %s", strings.ToLower(fe.Param()))
	default:
		return fmt.Sprintf("failed rule %q", fe.Tag())
	}
}

// Validator wraps struct-tag validation and exposes the business validator.
type Validator struct {
	validate *validator.Validate
	business *BusinessValidator
}

func New() *Validator {
	validate := validator.New()
	registerCustomRules(validate)

	return &Validator{
		validate: validate,
		business: NewBusinessValidator(),
	}
}

// Validate runs struct-tag validation and returns ValidationErrors on failure.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// GetBusinessValidator returns the business rule validator.
func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}

func registerCustomRules(validate *validator.Validate) {
	// future_date: time.Time / *time.Time strictly after now.
	_ = validate.RegisterValidation("future_date", func(fl validator.FieldLevel) bool {
		switch t := fl.Field().Interface().(type) {
		case time.Time:
			return t.After(time.Now())
		case *time.Time:
			return t == nil || t.After(time.Now())
		default:
			return false
		}
	})
}
