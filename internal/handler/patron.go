package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/forgo/dinmore/api/internal/model"
	"github.com/forgo/dinmore/api/internal/service"
)

// maxPatronBodyBytes bounds a patron batch request body
const maxPatronBodyBytes = 4 << 20

// PatronService interface for the handler
type PatronService interface {
	StorePatrons(ctx context.Context, patrons []model.Patron) (*service.PatronBatchResult, error)
}

// PatronHandler handles patron sighting HTTP requests
type PatronHandler struct {
	patrons PatronService
}

// NewPatronHandler creates a new patron handler
func NewPatronHandler(patrons PatronService) *PatronHandler {
	return &PatronHandler{patrons: patrons}
}

// Store handles POST /v1/patrons - store a batch of sightings.
// Responds 201 when every entry was stored and 207 when only some were.
func (h *PatronHandler) Store(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPatronBodyBytes)

	// Capture devices send the full face analysis payload, so unknown
	// fields are ignored here.
	var patrons []model.Patron
	if err := json.NewDecoder(r.Body).Decode(&patrons); err != nil {
		WriteError(w, model.NewBadRequestError("request body must be a JSON array of patrons"))
		return
	}

	if len(patrons) > model.MaxPatronsPerBatch {
		WriteError(w, model.NewLimitExceededError("patrons", model.MaxPatronsPerBatch))
		return
	}

	result, err := h.patrons.StorePatrons(r.Context(), patrons)
	if err != nil {
		var partial *service.PartialBatchError
		if errors.As(err, &partial) && result != nil {
			WriteData(w, http.StatusMultiStatus, result, nil)
			return
		}
		WriteError(w, MapServiceErrorWithContext(err, "store patrons"))
		return
	}

	WriteData(w, http.StatusCreated, result, nil)
}
