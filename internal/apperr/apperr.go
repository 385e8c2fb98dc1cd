// Package apperr defines the error taxonomy shared across the application.
package apperr

import (
	"errors"
	"fmt"
)

// Kind categorizes application errors.
type Kind string

const (
	// KindLoad covers missing or undecodable image files.
	KindLoad Kind = "load"
	// KindDevice covers unavailable or disconnected cameras.
	KindDevice Kind = "device"
	// KindExport covers spreadsheet write failures.
	KindExport Kind = "export"
	// KindDependency covers required libraries missing at startup.
	KindDependency Kind = "dependency"
)

// AppError is a structured application error with a closed kind.
type AppError struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewLoadError creates a load error for bad or missing image input.
func NewLoadError(message string, cause error) *AppError {
	return &AppError{Kind: KindLoad, Message: message, Cause: cause}
}

// NewDeviceError creates a device error for camera failures.
func NewDeviceError(message string, cause error) *AppError {
	return &AppError{Kind: KindDevice, Message: message, Cause: cause}
}

// NewExportError creates an export error for spreadsheet I/O failures.
func NewExportError(message string, cause error) *AppError {
	return &AppError{Kind: KindExport, Message: message, Cause: cause}
}

// NewDependencyError creates a dependency error for missing libraries.
func NewDependencyError(message string, cause error) *AppError {
	return &AppError{Kind: KindDependency, Message: message, Cause: cause}
}

// IsKind reports whether err (or anything it wraps) is an AppError of the
// given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
