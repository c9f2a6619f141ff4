package apperr

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates a uniqueness conflict (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the referenced courier or order does not exist.
var ErrNotFound = errors.New("not found")

// ErrPositionNotAvailable indicates that no position was ever recorded for a courier.
var ErrPositionNotAvailable = errors.New("position not available")

// ErrInvalidState indicates that the operation is not valid for the current lifecycle state.
var ErrInvalidState = errors.New("invalid state")

// ErrForbidden indicates that the caller does not own the resource.
var ErrForbidden = errors.New("forbidden")

// ErrCourierBusy indicates that the courier already has an active order.
var ErrCourierBusy = errors.New("courier busy")

// ErrOrderNotAvailable indicates that the order is not pending.
var ErrOrderNotAvailable = errors.New("order not available")

// ErrStoreUnavailable indicates a persistence or transport failure. Callers may retry.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrUnauthorized indicates that the caller could not be authenticated.
var ErrUnauthorized = errors.New("unauthorized")

// CourierBusyError names the order that keeps the courier busy.
type CourierBusyError struct {
	CourierID int64
	OrderID   int64
}

func (e *CourierBusyError) Error() string {
	return fmt.Sprintf("courier %d already has an active order (id %d)", e.CourierID, e.OrderID)
}

// Is reports ErrCourierBusy as the matching sentinel.
func (e *CourierBusyError) Is(target error) bool { return target == ErrCourierBusy }

// StoreError wraps a persistence failure for a named operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + ErrStoreUnavailable.Error()
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrStoreUnavailable.Error(), e.Err)
}

// Is reports ErrStoreUnavailable as the matching sentinel.
func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

func (e *StoreError) Unwrap() error { return e.Err }

// Store wraps err as a StoreError; nil stays nil.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// NotFoundError names the missing resource.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Resource, e.ID, ErrNotFound.Error())
}

// Is reports ErrNotFound as the matching sentinel.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound reports that resource id does not exist.
func NotFound(resource string, id int64) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// StatusError rejects a transition out of the order's current status.
// Err is ErrOrderNotAvailable or ErrInvalidState.
type StatusError struct {
	OrderID int64
	Status  string
	Err     error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("order %d is %s: %v", e.OrderID, e.Status, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// FieldError names the input field that failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Reason + ": " + ErrInvalid.Error()
	}
	return e.Field + " " + e.Reason + ": " + ErrInvalid.Error()
}

// Is reports ErrInvalid as the matching sentinel.
func (e *FieldError) Is(target error) bool { return target == ErrInvalid }

// Invalid reports that field failed validation for reason.
func Invalid(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
