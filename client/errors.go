// Copyright 2025 The Go Dify Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"errors"
	"fmt"

	"github.com/go-dify/dify"
)

// ValidationError is returned when a request is rejected locally, before any
// network traffic.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "dify: invalid request: " + e.Message
}

// NewValidationError creates a new ValidationError.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// TransportError wraps a failure to reach the server or to read from an open
// connection.
type TransportError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("dify: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when a stream frame's payload cannot be decoded
// into a stream event. Data carries the raw payload for diagnostics.
type DecodeError struct {
	Data string
	Err  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("dify: decoding stream event: %v (data: %s)", e.Err, e.Data)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// AsServiceError reports whether err is (or wraps) a service-reported
// [dify.ErrorResponse] and returns it.
func AsServiceError(err error) (*dify.ErrorResponse, bool) {
	var serviceErr *dify.ErrorResponse
	if errors.As(err, &serviceErr) {
		return serviceErr, true
	}
	return nil, false
}

// IsServiceError reports whether err is a service error with the given code.
func IsServiceError(err error, code string) bool {
	serviceErr, ok := AsServiceError(err)
	return ok && serviceErr.Code == code
}
