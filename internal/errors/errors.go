// Package errors defines the typed failures an import can end with.
package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode identifies an import failure kind.
type ErrorCode string

const (
	ErrMissingCapability ErrorCode = "MISSING_CAPABILITY" // 422
	ErrExtractionFailed  ErrorCode = "EXTRACTION_FAILED"  // 422
	ErrEmptyRecipe       ErrorCode = "EMPTY_RECIPE"       // 422
	ErrUnsupportedShape  ErrorCode = "UNSUPPORTED_SHAPE"  // 422
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"    // 400
	ErrNotFound          ErrorCode = "NOT_FOUND"          // 404
	ErrPersistence       ErrorCode = "PERSISTENCE_ERROR"  // 500
)

// ImportError is a structured error with code, HTTP status, and details.
type ImportError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *ImportError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *ImportError) Unwrap() error {
	return e.Err
}

// NewMissingCapability reports that no extraction backend for a format is
// installed. names lists every backend that could have served it.
func NewMissingCapability(names []string) *ImportError {
	names = append([]string(nil), names...)
	sort.Strings(names)
	return &ImportError{
		Code:    ErrMissingCapability,
		Status:  422,
		Message: fmt.Sprintf("no extraction backend available; install one of: %s", strings.Join(names, ", ")),
		Details: map[string]any{"names": names},
	}
}

// NewExtractionFailed reports that a backend ran but could not produce text.
func NewExtractionFailed(reason string, err error) *ImportError {
	msg := reason
	if err != nil {
		msg = fmt.Sprintf("%s: %v", reason, err)
	}
	return &ImportError{
		Code:    ErrExtractionFailed,
		Status:  422,
		Message: msg,
		Details: map[string]any{"reason": reason},
		Err:     err,
	}
}

// NewEmptyRecipe reports a record with no title, ingredients, or instructions.
func NewEmptyRecipe() *ImportError {
	return &ImportError{
		Code:    ErrEmptyRecipe,
		Status:  422,
		Message: "no recipe content found (no title, ingredients, or instructions)",
	}
}

// NewUnsupportedShape reports a structured tree that does not look like recipes.
func NewUnsupportedShape(reason string) *ImportError {
	return &ImportError{
		Code:    ErrUnsupportedShape,
		Status:  422,
		Message: fmt.Sprintf("unsupported recipe shape: %s", reason),
		Details: map[string]any{"reason": reason},
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *ImportError {
	return &ImportError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing recipe.
func NewNotFound(id string) *ImportError {
	return &ImportError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("recipe not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewPersistence wraps a storage failure. The in-flight record was rolled back.
func NewPersistence(err error) *ImportError {
	msg := "persistence failed"
	if err != nil {
		msg = fmt.Sprintf("persistence failed: %v", err)
	}
	return &ImportError{
		Code:    ErrPersistence,
		Status:  500,
		Message: msg,
		Err:     err,
	}
}

// As returns the ImportError in err's chain, if any.
func As(err error) (*ImportError, bool) {
	var ie *ImportError
	if stderrors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// Is checks if an error is an ImportError with the given code.
func Is(err error, code ErrorCode) bool {
	if ie, ok := As(err); ok {
		return ie.Code == code
	}
	return false
}

// MissingNames returns the backend names carried by a MISSING_CAPABILITY error.
func MissingNames(err error) []string {
	ie, ok := As(err)
	if !ok || ie.Details == nil {
		return nil
	}
	names, _ := ie.Details["names"].([]string)
	return names
}

// StatusOf returns the HTTP status for err, 500 for untyped errors.
func StatusOf(err error) int {
	if ie, ok := As(err); ok && ie.Status != 0 {
		return ie.Status
	}
	return 500
}

// UserMessage returns a single human-readable message for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	ie, ok := As(err)
	if !ok {
		return err.Error()
	}
	switch ie.Code {
	case ErrMissingCapability:
		return fmt.Sprintf("This file type needs an extra tool. Install one of: %s.",
			strings.Join(MissingNames(err), ", "))
	case ErrEmptyRecipe:
		return "No recipe could be found in this source."
	}
	return ie.Message
}
