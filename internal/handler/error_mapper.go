package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/forgo/dinmore/api/internal/database"
	"github.com/forgo/dinmore/api/internal/model"
	"github.com/forgo/dinmore/api/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	switch {
	// ===== Conflict Errors → 409 =====
	case errors.Is(err, service.ErrDeviceExists):
		return model.NewConflictError("device already registered")
	case errors.Is(err, database.ErrConflict):
		return model.NewConflictError(err.Error())

	// ===== Precondition Violations → 422 =====
	case errors.Is(err, service.ErrInvalidDeviceID):
		return model.NewValidationError([]model.FieldError{{Field: "id", Message: err.Error()}})
	case errors.Is(err, service.ErrBatchTooLarge):
		return model.NewLimitExceededError("patrons", model.MaxPatronsPerBatch)
	case errors.Is(err, database.ErrInvalidInput):
		return model.NewValidationError([]model.FieldError{{Field: "body", Message: err.Error()}})

	// ===== Concurrency Errors → 412 =====
	case errors.Is(err, database.ErrPreconditionFailed):
		return model.NewPreconditionFailedError("the row changed while the request was in flight; retry")

	// ===== Transient Errors → 503 =====
	case errors.Is(err, database.ErrTransient),
		errors.Is(err, context.DeadlineExceeded):
		return model.NewServiceUnavailableError("table store temporarily unavailable")

	// ===== Default → 500 =====
	default:
		slog.Error("unhandled service error", "error", err)
		return model.NewInternalError("")
	}
}

// MapServiceErrorWithContext converts a service error to a ProblemDetails response
// with additional context about the operation that failed.
func MapServiceErrorWithContext(err error, operation string) *model.ProblemDetails {
	pd := MapServiceError(err)
	if pd != nil && pd.Status == 500 {
		pd.Detail = operation + ": an unexpected error occurred"
	}
	return pd
}
