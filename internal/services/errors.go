package services

import (
	"errors"
	"fmt"
)

// ===== NOT FOUND ERRORS =====

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrTicketNotFound       = errors.New("ticket not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrFeedbackNotFound     = errors.New("feedback not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrResetRequestNotFound = errors.New("reset request not found")
)

// ===== CONFLICT ERRORS =====

var (
	ErrDuplicateRegistration = errors.New("participant is already registered for this event")
	ErrDuplicateFeedback     = errors.New("feedback already submitted for this event")
	ErrDuplicateEmail        = errors.New("an account with this email already exists")
	ErrEventFull             = errors.New("event has reached its registration limit")
	ErrOutOfStock            = errors.New("not enough stock remaining")
	ErrPurchaseLimitExceeded = errors.New("purchase limit for this item reached")
	ErrPendingResetExists    = errors.New("a pending reset request already exists")
)

// IsNotFound reports whether err maps to a 404
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrRegistrationNotFound) ||
		errors.Is(err, ErrTicketNotFound) ||
		errors.Is(err, ErrMessageNotFound) ||
		errors.Is(err, ErrFeedbackNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrResetRequestNotFound)
}

// IsConflict reports whether err maps to a 409
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateRegistration) ||
		errors.Is(err, ErrDuplicateFeedback) ||
		errors.Is(err, ErrDuplicateEmail) ||
		errors.Is(err, ErrEventFull) ||
		errors.Is(err, ErrOutOfStock) ||
		errors.Is(err, ErrPurchaseLimitExceeded) ||
		errors.Is(err, ErrPendingResetExists)
}

// ===== PERMISSION ERRORS =====

// PermissionError is returned when a caller is authenticated but not allowed
// to perform the action. Handlers map it to 403; the resource's existence is
// deliberately revealed.
type PermissionError struct {
	UserID     string
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// ===== STATE ERRORS =====

// StateError is returned when an operation is valid in general but not in the
// resource's current lifecycle state. Handlers map it to 409.
type StateError struct {
	Resource string
	Current  string
	Action   string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s %s in state %s", e.Action, e.Resource, e.Current)
}

func NewStateError(resource, current, action string) *StateError {
	return &StateError{
		Resource: resource,
		Current:  current,
		Action:   action,
	}
}
