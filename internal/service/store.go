package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/forgo/dinmore/api/internal/database"
	"github.com/forgo/dinmore/api/internal/model"
	"github.com/google/uuid"
)

// DeviceRepository defines the interface for device storage
type DeviceRepository interface {
	Create(ctx context.Context, device *model.Device) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Device, error)
	List(ctx context.Context) ([]model.Device, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SightingRepository defines the interface for sighting storage
type SightingRepository interface {
	EnsureTable(ctx context.Context) error
	Create(ctx context.Context, patron model.Patron) (*model.Sighting, error)
}

// SightingRecorder receives every stored sighting (e.g. a metrics sink)
type SightingRecorder interface {
	RecordSighting(ctx context.Context, sighting model.Sighting) error
}

// BatchObserver is told the outcome of every StorePatrons batch that reached
// the store
type BatchObserver interface {
	ObserveBatch(stored, failed int, elapsed time.Duration)
}

// StoredSighting identifies the row written for one batch entry
type StoredSighting struct {
	Index           int    `json:"index"`
	PersistedFaceID string `json:"persistedFaceId"`
	SightingID      string `json:"sightingId"`
}

// PatronBatchResult reports the outcome of StorePatrons
type PatronBatchResult struct {
	Stored []StoredSighting `json:"stored"`
	Failed []EntryFailure   `json:"failed,omitempty"`
}

// StoreService is the persistence facade for devices and patron sightings
type StoreService struct {
	deviceRepo   DeviceRepository
	sightingRepo SightingRepository
	recorder     SightingRecorder
	observer     BatchObserver
	logger       *slog.Logger
}

// StoreServiceConfig holds configuration for the store service
type StoreServiceConfig struct {
	DeviceRepo   DeviceRepository
	SightingRepo SightingRepository
	Recorder     SightingRecorder // Optional
	Observer     BatchObserver    // Optional
	Logger       *slog.Logger     // Optional, uses slog.Default if nil
}

// NewStoreService creates a new store service
func NewStoreService(cfg StoreServiceConfig) *StoreService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreService{
		deviceRepo:   cfg.DeviceRepo,
		sightingRepo: cfg.SightingRepo,
		recorder:     cfg.Recorder,
		observer:     cfg.Observer,
		logger:       logger,
	}
}

// StoreDevice registers a new device
func (s *StoreService) StoreDevice(ctx context.Context, device model.Device) error {
	if device.ID == uuid.Nil {
		return ErrInvalidDeviceID
	}

	if err := s.deviceRepo.Create(ctx, &device); err != nil {
		if errors.Is(err, database.ErrConflict) {
			return ErrDeviceExists
		}
		return err
	}
	return nil
}

// GetDevice retrieves a device, returning nil if it is not registered
func (s *StoreService) GetDevice(ctx context.Context, id uuid.UUID) (*model.Device, error) {
	if id == uuid.Nil {
		return nil, ErrInvalidDeviceID
	}
	return s.deviceRepo.GetByID(ctx, id)
}

// GetDevices returns every registered device, in no particular order
func (s *StoreService) GetDevices(ctx context.Context) ([]model.Device, error) {
	return s.deviceRepo.List(ctx)
}

// DeleteDevice removes a device. Unknown devices are not an error.
func (s *StoreService) DeleteDevice(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrInvalidDeviceID
	}
	return s.deviceRepo.Delete(ctx, id)
}

// StorePatrons stores one sighting row per patron. Entries are independent:
// a failed entry does not stop the rest, and nothing is rolled back. When any
// entry fails the result is returned together with a *PartialBatchError.
func (s *StoreService) StorePatrons(ctx context.Context, patrons []model.Patron) (*PatronBatchResult, error) {
	result := &PatronBatchResult{Stored: make([]StoredSighting, 0, len(patrons))}
	if len(patrons) == 0 {
		return result, nil
	}
	if len(patrons) > model.MaxPatronsPerBatch {
		return nil, ErrBatchTooLarge
	}

	if err := s.sightingRepo.EnsureTable(ctx); err != nil {
		return nil, err
	}

	if s.observer != nil {
		start := time.Now()
		defer func() {
			s.observer.ObserveBatch(len(result.Stored), len(result.Failed), time.Since(start))
		}()
	}

	for i, patron := range patrons {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(patrons); j++ {
				result.Failed = append(result.Failed, newEntryFailure(j, patrons[j], err))
			}
			break
		}

		sighting, err := s.sightingRepo.Create(ctx, patron)
		if err != nil {
			result.Failed = append(result.Failed, newEntryFailure(i, patron, err))
			continue
		}

		result.Stored = append(result.Stored, StoredSighting{
			Index:           i,
			PersistedFaceID: sighting.PersistedFaceID,
			SightingID:      sighting.SightingID,
		})
		s.record(ctx, *sighting)
	}

	if len(result.Failed) > 0 {
		s.logger.WarnContext(ctx, "patron batch partially stored",
			slog.Int("stored", len(result.Stored)),
			slog.Int("failed", len(result.Failed)),
		)
		return result, &PartialBatchError{Failures: result.Failed}
	}
	return result, nil
}

// record forwards a stored sighting to the recorder; failures are only logged
func (s *StoreService) record(ctx context.Context, sighting model.Sighting) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordSighting(ctx, sighting); err != nil {
		s.logger.WarnContext(ctx, "failed to record sighting",
			slog.String("persisted_face_id", sighting.PersistedFaceID),
			slog.String("error", err.Error()),
		)
	}
}

func newEntryFailure(index int, patron model.Patron, err error) EntryFailure {
	return EntryFailure{
		Index:           index,
		PersistedFaceID: patron.PersistedFaceID,
		Message:         err.Error(),
		Err:             err,
	}
}
