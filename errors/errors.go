/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when a partition has no rows or a type has no
	// registered key layout
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when configuration or key validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedRequest is returned when a write request cannot be parsed
	ErrMalformedRequest = errors.New("malformed request")

	// ErrStorageWrite is returned when a row could not be written to the table
	ErrStorageWrite = errors.New("storage write failed")
)

// NotFoundError represents a lookup miss for a named item
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// MalformedRequestError describes why a request body was rejected.
type MalformedRequestError struct {
	Reason string
	Err    error
}

func (e *MalformedRequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed request: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed request: %s", e.Reason)
}

func (e *MalformedRequestError) Is(target error) bool {
	return target == ErrMalformedRequest
}

func (e *MalformedRequestError) Unwrap() error {
	return e.Err
}

// StorageWriteError carries the key of the row whose write failed.
type StorageWriteError struct {
	PartitionKey string
	RowKey       string
	Err          error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("write of row %q in partition %q failed: %v", e.RowKey, e.PartitionKey, e.Err)
}

func (e *StorageWriteError) Is(target error) bool {
	return target == ErrStorageWrite
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(itemType, key string) error {
	return &NotFoundError{Type: itemType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewMalformedRequestError creates a new MalformedRequestError. err may be nil.
func NewMalformedRequestError(reason string, err error) error {
	return &MalformedRequestError{Reason: reason, Err: err}
}

// NewStorageWriteError creates a new StorageWriteError
func NewStorageWriteError(partitionKey, rowKey string, err error) error {
	return &StorageWriteError{PartitionKey: partitionKey, RowKey: rowKey, Err: err}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsMalformedRequest checks if an error is a malformed request error
func IsMalformedRequest(err error) bool {
	return errors.Is(err, ErrMalformedRequest)
}

// IsStorageWrite checks if an error is a storage write error
func IsStorageWrite(err error) bool {
	return errors.Is(err, ErrStorageWrite)
}
