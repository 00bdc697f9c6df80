package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of an inner AppError
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// AsAppError returns the outermost AppError in the chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the code of the outermost AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether any AppError in the chain carries code.
func HasCode(err error, code string) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Code == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// Predefined error codes
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeValidationError = "VALIDATION_ERROR"
	CodeStudentNotFound = "STUDENT_NOT_FOUND"
	CodeDataSource      = "DATA_SOURCE_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func StudentNotFound() *AppError {
	return New(CodeStudentNotFound, "Student not found")
}

// DataSourceError marks a failure to obtain rows from an upstream dataset.
func DataSourceError(source string, cause error) *AppError {
	return &AppError{
		Code:    CodeDataSource,
		Message: fmt.Sprintf("%s fetch failed", source),
		Cause:   cause,
	}
}

// Hint returns an operator hint for common upstream failures, or "".
// The returned text starts with a space so it can be appended to a message.
func Hint(message, serviceAccount string) string {
	switch {
	case strings.Contains(message, "permission") || strings.Contains(message, "403"):
		if serviceAccount != "" {
			return fmt.Sprintf(" Share both spreadsheets with your service account email %s (Viewer).", serviceAccount)
		}
		return " Share both spreadsheets with your service account email (Viewer)."
	case strings.Contains(message, "range") || strings.Contains(message, "Unable to parse"):
		return " Check that STUDENT_SHEET_RANGE and APPLICATIONS_SHEET_RANGE match your tab names (e.g. Main instead of Sheet1)."
	}
	return ""
}
