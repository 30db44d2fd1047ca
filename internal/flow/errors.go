package flow

import (
	"errors"
	"fmt"
)

// ValidationCode categorizes validation failures.
type ValidationCode string

const (
	// CodeAnswerRequired indicates a required choice question has no answer.
	CodeAnswerRequired ValidationCode = "ANSWER_REQUIRED"

	// CodeTextRequired indicates a required text question is empty after trimming.
	CodeTextRequired ValidationCode = "TEXT_REQUIRED"

	// CodeAreaRequired indicates no area was chosen although one is mandatory.
	CodeAreaRequired ValidationCode = "AREA_REQUIRED"

	// CodeShiftRequired indicates no shift was chosen although one is mandatory.
	CodeShiftRequired ValidationCode = "SHIFT_REQUIRED"

	// CodeShiftUnknown indicates a chosen shift is not in the known shift set.
	CodeShiftUnknown ValidationCode = "SHIFT_UNKNOWN"

	// CodeContactRequired indicates follow-up is opted in but name or
	// employee number is missing.
	CodeContactRequired ValidationCode = "CONTACT_REQUIRED"
)

// ValidationError is surfaced synchronously to the user; navigation does
// not advance and no state is mutated when one is returned.
type ValidationError struct {
	Code       ValidationCode
	QuestionID string // empty for terminal-step failures
	Message    string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.QuestionID != "" {
		return fmt.Sprintf("%s: %s (question=%s)", e.Code, e.Message, e.QuestionID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsValidation reports whether err is a validation failure.
// Uses errors.As to handle wrapped errors.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func newValidationError(code ValidationCode, questionID, message string) *ValidationError {
	return &ValidationError{Code: code, QuestionID: questionID, Message: message}
}
