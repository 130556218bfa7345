// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for rexauth.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Taxonomy: One constructor per authentication failure kind (InvalidCredentials,
    VersionMismatch, ...). The Code field is the discriminator.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"net/http"
)

// # Error Codes

// Machine-readable codes. Handlers and tests switch on these, never on messages.
const (
	CodeInsufficientInput  = "INSUFFICIENT_INPUT"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeNotFound           = "NOT_FOUND"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeSchemaViolation    = "SCHEMA_VIOLATION"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeUserGone           = "USER_GONE"
	CodeVersionMismatch    = "VERSION_MISMATCH"
	CodeValidation         = "VALIDATION_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
)

// AppError is the canonical error type for the rexauth API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "USER_GONE").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Input Errors

// InsufficientInput creates a 400 [AppError] for missing credentials.
func InsufficientInput(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeInsufficientInput,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// WeakPassword creates a 400 [AppError] for passwords below the minimum length.
func WeakPassword(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeWeakPassword,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// SchemaViolation creates a 400 [AppError] for a record that does not satisfy
// the declared identity schema. The violated field is reported in Details.
func SchemaViolation(field, msg string) *AppError {
	appErr := &AppError{
		Code:       CodeSchemaViolation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
	if field != "" {
		appErr.Details = []FieldError{{Field: field, Message: msg}}
	}
	return appErr
}

// DuplicateEmail creates a 400 [AppError] for an email that is already registered.
func DuplicateEmail(msg string) *AppError {
	return &AppError{
		Code:       CodeDuplicateEmail,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// # Identity Errors

// NotFound creates a 404 [AppError].
//
// Example:
//
//	apperr.NotFound("User doesn't exist")
func NotFound(msg string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    msg,
		HTTPStatus: http.StatusNotFound,
	}
}

// InvalidCredentials creates a 401 [AppError] for a failed password check.
func InvalidCredentials(msg string) *AppError {
	return &AppError{
		Code:       CodeInvalidCredentials,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// UserGone creates a 400 [AppError] for a token whose identity no longer exists.
func UserGone(msg string) *AppError {
	return &AppError{
		Code:       CodeUserGone,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// VersionMismatch creates a 401 [AppError] for a superseded refresh token.
func VersionMismatch(msg string) *AppError {
	return &AppError{
		Code:       CodeVersionMismatch,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
