package errs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("time range overlaps an existing reservation")
	ErrTimeout    = errors.New("storage operation timed out")
	ErrIO         = errors.New("storage operation failed")
	// ErrReconcileIncomplete means an edit removed the original reservations
	// but could not create the full replacement set; the edit may be retried.
	ErrReconcileIncomplete = errors.New("batch edit incomplete")
	ErrBatchTooLarge       = errors.New("too many writes for one atomic batch")
	// ErrUnreadable marks a stored record whose seat or interval cannot be read,
	// so overlap with it cannot be ruled out.
	ErrUnreadable = errors.New("stored reservation is unreadable")
)

// Validation codes. They are part of the API contract.
const (
	CodeEmptyName      = "empty-name"
	CodeInvalidRange   = "invalid-range"
	CodeEmptySelection = "empty-selection"
	CodeEmptySchedule  = "empty-schedule"
	CodeInvalidFloor   = "invalid-floor"
	CodeInvalidSeat    = "invalid-seat"
	CodeInvalidPurpose = "invalid-purpose"
	CodeInvalidDate    = "invalid-date"
	CodeSameDate       = "same-date"
	CodeInvalidColor   = "invalid-color"
	CodeInvalidMove    = "invalid-move"
)

type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewValidation(code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidationCode returns the code of a validation error anywhere in err's chain.
func ValidationCode(err error) (string, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code, true
	}
	return "", false
}

type ValidationErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
