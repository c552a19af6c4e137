package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/forgo/dinmore/api/internal/database"
	"github.com/forgo/dinmore/api/internal/repository"
)

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Device Errors =====
var (
	ErrDeviceExists    = fmt.Errorf("%w: device already registered", database.ErrConflict)
	ErrInvalidDeviceID = repository.ErrInvalidDeviceID
)

// ===== Patron Errors =====
var (
	ErrPartialBatch      = errors.New("one or more patrons could not be stored")
	ErrMissingFaceID     = repository.ErrMissingFaceID
	ErrMissingTimestamp  = repository.ErrMissingTimestamp
	ErrMissingConfidence = repository.ErrMissingConfidence
	ErrBatchTooLarge     = fmt.Errorf("%w: too many patrons in one batch", database.ErrInvalidInput)
)

// EntryFailure records why one entry of a patron batch was not stored
type EntryFailure struct {
	Index           int    `json:"index"`
	PersistedFaceID string `json:"persistedFaceId,omitempty"`
	Message         string `json:"error"`
	Err             error  `json:"-"`
}

// Error implements the error interface
func (f EntryFailure) Error() string {
	return fmt.Sprintf("patron %d: %v", f.Index, f.Err)
}

// Unwrap returns the underlying cause
func (f EntryFailure) Unwrap() error {
	return f.Err
}

// PartialBatchError is returned by StorePatrons when some entries failed.
// The entries not listed were stored.
type PartialBatchError struct {
	Failures []EntryFailure
}

// Error implements the error interface
func (e *PartialBatchError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("%s: %s", ErrPartialBatch.Error(), strings.Join(parts, "; "))
}

// Is reports whether target is ErrPartialBatch
func (e *PartialBatchError) Is(target error) bool {
	return target == ErrPartialBatch
}

// Unwrap exposes each entry's cause to errors.Is and errors.As
func (e *PartialBatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}
