package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/forgo/dinmore/api/internal/model"
	"github.com/forgo/dinmore/api/internal/service"
)

// defaultStoreTimeout bounds one batch write triggered by a message
const defaultStoreTimeout = 30 * time.Second

// PatronStore persists sighting batches
type PatronStore interface {
	StorePatrons(ctx context.Context, patrons []model.Patron) (*service.PatronBatchResult, error)
}

// SightingHandler turns sighting messages into StorePatrons calls. The last
// topic level names the reporting device and fills entries that omit it.
type SightingHandler struct {
	store   PatronStore
	prefix  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewSightingHandler creates a handler for topics under prefix
func NewSightingHandler(store PatronStore, prefix string, logger *slog.Logger) *SightingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SightingHandler{
		store:   store,
		prefix:  prefix,
		timeout: defaultStoreTimeout,
		logger:  logger.With(slog.String("component", "ingest")),
	}
}

// Topic is the subscription filter this handler serves
func (h *SightingHandler) Topic() string {
	return SightingsTopic(h.prefix)
}

// Handle decodes one message and stores its patrons. Messages larger than
// model.MaxPatronsPerBatch are stored in consecutive chunks. Failed entries
// are logged by their index in the message and reported as an error.
func (h *SightingHandler) Handle(ctx context.Context, topic string, payload []byte) error {
	device, ok := DeviceFromTopic(h.prefix, topic)
	if !ok {
		return fmt.Errorf("%w: unexpected topic %q", ErrInvalidTopic, topic)
	}

	patrons, err := decodePatrons(payload)
	if err != nil {
		return err
	}
	if len(patrons) == 0 {
		return nil
	}

	for i := range patrons {
		if patrons[i].Device == "" {
			patrons[i].Device = device
		}
	}

	var (
		stored int
		errs   []error
	)
	for start := 0; start < len(patrons); start += model.MaxPatronsPerBatch {
		end := min(start+model.MaxPatronsPerBatch, len(patrons))
		n, err := h.storeChunk(ctx, device, start, patrons[start:end])
		stored += n
		if err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("storing sightings from %s: %w", device, errors.Join(errs...))
	}

	h.logger.DebugContext(ctx, "sightings stored",
		slog.String("device", device),
		slog.Int("count", stored),
	)
	return nil
}

// storeChunk stores patrons that start at offset in the message
func (h *SightingHandler) storeChunk(ctx context.Context, device string, offset int, patrons []model.Patron) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	result, err := h.store.StorePatrons(ctx, patrons)
	stored := 0
	if result != nil {
		stored = len(result.Stored)
	}
	if err == nil {
		return stored, nil
	}

	var partial *service.PartialBatchError
	if errors.As(err, &partial) {
		for _, f := range partial.Failures {
			h.logger.WarnContext(ctx, "sighting rejected",
				slog.String("device", device),
				slog.Int("index", offset+f.Index),
				slog.String("persisted_face_id", f.PersistedFaceID),
				slog.String("error", f.Message),
			)
		}
	} else {
		h.logger.WarnContext(ctx, "sighting chunk failed",
			slog.String("device", device),
			slog.Int("offset", offset),
			slog.Int("size", len(patrons)),
			slog.String("error", err.Error()),
		)
	}
	return stored, err
}

// decodePatrons accepts a JSON array of patrons or a single patron object
func decodePatrons(payload []byte) ([]model.Patron, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty message", ErrMalformedPayload)
	}

	if trimmed[0] == '{' {
		var p model.Patron
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
		return []model.Patron{p}, nil
	}

	var patrons []model.Patron
	if err := json.Unmarshal(trimmed, &patrons); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return patrons, nil
}
