package usecase

import (
	"errors"
	"fmt"

	"contacto_profesionales/internal/domain/entities"
)

var (
	ErrValidation             = errors.New("invalid service request input")
	ErrDuplicateRequest       = errors.New("a pending service request already exists for this client and professional")
	ErrServiceRequestNotFound = errors.New("service request not found")
	ErrNotOwner               = errors.New("actor is not allowed to act on this service request")
	ErrInvalidTransition      = errors.New("transition not permitted from the current state")
	ErrPersistence            = errors.New("service request storage failure")
)

// ErrorKind is the stable, machine-readable name of an error family.
type ErrorKind string

const (
	KindValidation        ErrorKind = "VALIDATION_ERROR"
	KindDuplicateRequest  ErrorKind = "DUPLICATE_REQUEST"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindNotOwner          ErrorKind = "NOT_OWNER"
	KindInvalidTransition ErrorKind = "INVALID_TRANSITION"
	KindPersistence       ErrorKind = "PERSISTENCE_ERROR"
	KindUnknown           ErrorKind = "INTERNAL_ERROR"
)

// ValidationError names the first input field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalidField(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// TransitionError reports an event that has no edge from the request's state.
type TransitionError struct {
	From   entities.RequestState
	Event  entities.Event
	Detail string
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("%s: cannot %s a %s request", ErrInvalidTransition.Error(), e.Event, e.From)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}

// KindOf classifies err into one of the lifecycle error kinds.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrDuplicateRequest):
		return KindDuplicateRequest
	case errors.Is(err, ErrServiceRequestNotFound):
		return KindNotFound
	case errors.Is(err, ErrNotOwner):
		return KindNotOwner
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	default:
		return KindUnknown
	}
}
