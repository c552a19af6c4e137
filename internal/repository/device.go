package repository

import (
	"context"

	"github.com/forgo/dinmore/api/internal/model"
	"github.com/google/uuid"
)

// DefaultDeviceTable is the table device rows are stored in
const DefaultDeviceTable = "devices"

// DeviceRepository handles device data access
type DeviceRepository struct {
	gw    *TableGateway
	keys  KeyStrategy
	table string
}

// NewDeviceRepository creates a new device repository
func NewDeviceRepository(gw *TableGateway, keys KeyStrategy, table string) *DeviceRepository {
	if table == "" {
		table = DefaultDeviceTable
	}
	return &DeviceRepository{gw: gw, keys: keys, table: table}
}

// Create registers a device. An existing id fails with database.ErrConflict.
func (r *DeviceRepository) Create(ctx context.Context, device *model.Device) error {
	partition, _, err := r.keys.DeviceKey(device.ID)
	if err != nil {
		return err
	}

	if err := r.gw.EnsureTable(ctx, r.table); err != nil {
		return err
	}

	_, err = r.gw.Insert(ctx, r.table, DeviceToEntity(partition, *device))
	return err
}

// GetByID retrieves a device by id, returning nil if it does not exist
func (r *DeviceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Device, error) {
	partition, row, err := r.keys.DeviceKey(id)
	if err != nil {
		return nil, err
	}

	entity, err := r.gw.Retrieve(ctx, r.table, partition, row)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, nil
	}

	device, err := DeviceFromEntity(*entity)
	if err != nil {
		return nil, err
	}
	return &device, nil
}

// List returns every registered device in store order
func (r *DeviceRepository) List(ctx context.Context) ([]model.Device, error) {
	entities, err := r.gw.ScanAll(ctx, r.table)
	if err != nil {
		return nil, err
	}

	devices := make([]model.Device, 0, len(entities))
	for _, entity := range entities {
		device, err := DeviceFromEntity(entity)
		if err != nil {
			return nil, err
		}
		devices = append(devices, device)
	}
	return devices, nil
}

// Delete removes a device; deleting an unknown device succeeds
func (r *DeviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	partition, row, err := r.keys.DeviceKey(id)
	if err != nil {
		return err
	}
	return r.gw.Delete(ctx, r.table, partition, row)
}
