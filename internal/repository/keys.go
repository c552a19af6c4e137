package repository

import (
	"fmt"
	"strings"

	"github.com/forgo/dinmore/api/internal/database"
	"github.com/google/uuid"
)

// DefaultDevicePartition is the partition every device row lives in.
const DefaultDevicePartition = "device"

// KeyStrategy derives (partition, row) keys for domain entities.
type KeyStrategy struct {
	DevicePartition string
	NewRowID        func() uuid.UUID
}

// NewKeyStrategy creates a key strategy using random v4 sighting ids
func NewKeyStrategy(devicePartition string) KeyStrategy {
	if devicePartition == "" {
		devicePartition = DefaultDevicePartition
	}
	return KeyStrategy{
		DevicePartition: devicePartition,
		NewRowID:        uuid.New,
	}
}

// DeviceKey returns the keys for a device. The row key is the canonical
// lower-case GUID form.
func (k KeyStrategy) DeviceKey(id uuid.UUID) (partition, row string, err error) {
	if id == uuid.Nil {
		return "", "", ErrInvalidDeviceID
	}
	return k.devicePartition(), id.String(), nil
}

// PatronKey returns the keys for a new sighting of faceID. Every call yields a
// fresh row key, so repeated sightings of one face never collide.
func (k KeyStrategy) PatronKey(faceID string) (partition, row string, err error) {
	if strings.TrimSpace(faceID) == "" {
		return "", "", ErrMissingFaceID
	}
	newID := k.NewRowID
	if newID == nil {
		newID = uuid.New
	}
	return faceID, newID().String(), nil
}

func (k KeyStrategy) devicePartition() string {
	if k.DevicePartition == "" {
		return DefaultDevicePartition
	}
	return k.DevicePartition
}

// Precondition violations raised before any store I/O.
var (
	ErrInvalidDeviceID   = fmt.Errorf("%w: device id must be a non-nil GUID", database.ErrInvalidInput)
	ErrMissingFaceID     = fmt.Errorf("%w: persisted face id is required", database.ErrInvalidInput)
	ErrMissingTimestamp  = fmt.Errorf("%w: sighting time is required", database.ErrInvalidInput)
	ErrMissingConfidence = fmt.Errorf("%w: face match confidence is required", database.ErrInvalidInput)
)
