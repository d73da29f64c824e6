package compose

import (
	"fmt"

	"github.com/pkg/errors"
)

// ValidationError is returned when a send request is rejected before any
// mail is sent. Message is safe to show to the user.
type ValidationError struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// Is reports whether target is a ValidationError with the same code.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Code == e.Code
}

// Validation error codes.
const (
	CodeMissingFields   = "missing_fields"
	CodeTooLarge        = "attachment_too_large"
	CodeResumeMissing   = "resume_missing"
	CodeEmptyRecipients = "empty_recipients"
)

var (
	ErrMissingFields      = &ValidationError{Code: CodeMissingFields, Message: "Missing required fields"}
	ErrAttachmentTooLarge = &ValidationError{Code: CodeTooLarge, Message: "Total attachment size exceeds limit"}
	ErrResumeMissing      = &ValidationError{Code: CodeResumeMissing, Message: "Resume file is missing"}
	ErrEmptyRecipients    = &ValidationError{Code: CodeEmptyRecipients, Message: "At least one recipient is required"}
)

// AttachmentReadError reports an uploaded file that could not be read.
type AttachmentReadError struct {
	Filename string
	Err      error
}

// Error implements the error interface.
func (e *AttachmentReadError) Error() string {
	return fmt.Sprintf("failed to read attachment %q: %v", e.Filename, e.Err)
}

// Unwrap returns the underlying read error.
func (e *AttachmentReadError) Unwrap() error {
	return e.Err
}

// Cause implements the github.com/pkg/errors causer interface.
func (e *AttachmentReadError) Cause() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
