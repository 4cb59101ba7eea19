package domain

import (
	"fmt"
)

// ErrDocumentNotFound is returned when a document id matches no stored document
type ErrDocumentNotFound struct {
	ID string
}

func (e *ErrDocumentNotFound) Error() string {
	return fmt.Sprintf("document not found with ID: %s", e.ID)
}

// ErrDocumentExists is returned when creating a document whose id is taken
type ErrDocumentExists struct {
	ID string
}

func (e *ErrDocumentExists) Error() string {
	return fmt.Sprintf("document already exists with ID: %s", e.ID)
}

// ValidationError represents an error that occurs due to invalid input or parameters
type ValidationError struct {
	Message string
}

// Error implements the error interface
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new validation error with the given message
func NewValidationError(message string) error {
	return ValidationError{
		Message: message,
	}
}
