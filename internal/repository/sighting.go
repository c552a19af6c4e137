package repository

import (
	"context"

	"github.com/forgo/dinmore/api/internal/model"
)

// DefaultPatronTable is the table sighting rows are stored in
const DefaultPatronTable = "patrons"

// SightingRepository handles patron sighting data access.
// Sightings are append-only: one row per observation, partitioned by face.
type SightingRepository struct {
	gw    *TableGateway
	keys  KeyStrategy
	table string
}

// NewSightingRepository creates a new sighting repository
func NewSightingRepository(gw *TableGateway, keys KeyStrategy, table string) *SightingRepository {
	if table == "" {
		table = DefaultPatronTable
	}
	return &SightingRepository{gw: gw, keys: keys, table: table}
}

// EnsureTable creates the sightings table if needed
func (r *SightingRepository) EnsureTable(ctx context.Context) error {
	return r.gw.EnsureTable(ctx, r.table)
}

// Create stores one sighting of a patron under a fresh row key.
// Precondition failures are returned before any store call.
func (r *SightingRepository) Create(ctx context.Context, patron model.Patron) (*model.Sighting, error) {
	partition, row, err := r.keys.PatronKey(patron.PersistedFaceID)
	if err != nil {
		return nil, err
	}

	entity, err := PatronToEntity(partition, row, patron)
	if err != nil {
		return nil, err
	}

	inserted, err := r.gw.Insert(ctx, r.table, entity)
	if err != nil {
		return nil, err
	}

	sighting, err := PatronFromEntity(inserted)
	if err != nil {
		return nil, err
	}
	return &sighting, nil
}

// GetByKey retrieves a single sighting, returning nil if it does not exist
func (r *SightingRepository) GetByKey(ctx context.Context, faceID, sightingID string) (*model.Sighting, error) {
	entity, err := r.gw.Retrieve(ctx, r.table, faceID, sightingID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, nil
	}

	sighting, err := PatronFromEntity(*entity)
	if err != nil {
		return nil, err
	}
	return &sighting, nil
}

// List returns every stored sighting in store order. No route exposes it;
// nothing on the request path calls it.
func (r *SightingRepository) List(ctx context.Context) ([]model.Sighting, error) {
	entities, err := r.gw.ScanAll(ctx, r.table)
	if err != nil {
		return nil, err
	}

	sightings := make([]model.Sighting, 0, len(entities))
	for _, entity := range entities {
		sighting, err := PatronFromEntity(entity)
		if err != nil {
			return nil, err
		}
		sightings = append(sightings, sighting)
	}
	return sightings, nil
}
