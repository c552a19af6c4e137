package repository

import (
	"errors"
	"fmt"
	"math"

	"github.com/forgo/dinmore/api/internal/database"
	"github.com/forgo/dinmore/api/internal/model"
	"github.com/google/uuid"
)

// Stored property names
const (
	PropDeviceLabel = "DeviceLabel"
	PropExhibit     = "Exhibit"
	PropVenue       = "Venue"

	PropDevice              = "Device"
	PropGender              = "Gender"
	PropAge                 = "Age"
	PropPrimaryEmotion      = "PrimaryEmotion"
	PropTimeOfSighting      = "TimeOfSighting"
	PropSmile               = "Smile"
	PropGlasses             = "Glasses"
	PropFaceMatchConfidence = "FaceMatchConfidence"
)

// ErrMalformedEntity indicates a stored row cannot be decoded into a domain value
var ErrMalformedEntity = errors.New("malformed entity")

// DeviceToEntity maps a device onto a row in the given partition
func DeviceToEntity(partition string, d model.Device) database.Entity {
	return database.Entity{
		PartitionKey: partition,
		RowKey:       d.ID.String(),
		Properties: map[string]any{
			PropDeviceLabel: d.Label,
			PropExhibit:     d.Exhibit,
			PropVenue:       d.Venue,
		},
	}
}

// DeviceFromEntity maps a device row back; the id comes from the row key
func DeviceFromEntity(e database.Entity) (model.Device, error) {
	id, err := uuid.Parse(e.RowKey)
	if err != nil {
		return model.Device{}, fmt.Errorf("%w: device row key %q is not a GUID", ErrMalformedEntity, e.RowKey)
	}
	return model.Device{
		ID:      id,
		Label:   getString(e.Properties, PropDeviceLabel),
		Exhibit: getString(e.Properties, PropExhibit),
		Venue:   getString(e.Properties, PropVenue),
	}, nil
}

// PatronToEntity maps a patron observation onto a sighting row.
// Age is rounded half away from zero and confidence is widened to float64.
func PatronToEntity(partition, row string, p model.Patron) (database.Entity, error) {
	if partition == "" {
		return database.Entity{}, ErrMissingFaceID
	}
	if p.Time == nil || p.Time.IsZero() {
		return database.Entity{}, ErrMissingTimestamp
	}
	if p.FaceMatchConfidence == nil {
		return database.Entity{}, ErrMissingConfidence
	}

	return database.Entity{
		PartitionKey: partition,
		RowKey:       row,
		Properties: map[string]any{
			PropDevice:              p.Device,
			PropExhibit:             p.Exhibit,
			PropGender:              p.FaceAttributes.Gender,
			PropAge:                 int64(math.Round(p.FaceAttributes.Age)),
			PropPrimaryEmotion:      p.ResolvedPrimaryEmotion(),
			PropTimeOfSighting:      p.Time.UTC(),
			PropSmile:               p.FaceAttributes.Smile,
			PropGlasses:             p.FaceAttributes.Glasses,
			PropFaceMatchConfidence: float64(*p.FaceMatchConfidence),
		},
	}, nil
}

// PatronFromEntity maps a sighting row back
func PatronFromEntity(e database.Entity) (model.Sighting, error) {
	seen := getTime(e.Properties, PropTimeOfSighting)
	if seen == nil {
		return model.Sighting{}, fmt.Errorf("%w: sighting %s/%s has no %s", ErrMalformedEntity, e.PartitionKey, e.RowKey, PropTimeOfSighting)
	}
	return model.Sighting{
		PersistedFaceID:     e.PartitionKey,
		SightingID:          e.RowKey,
		Device:              getString(e.Properties, PropDevice),
		Exhibit:             getString(e.Properties, PropExhibit),
		Gender:              getString(e.Properties, PropGender),
		Age:                 getInt(e.Properties, PropAge),
		PrimaryEmotion:      getString(e.Properties, PropPrimaryEmotion),
		TimeOfSighting:      seen.UTC(),
		Smile:               getFloat(e.Properties, PropSmile),
		Glasses:             getString(e.Properties, PropGlasses),
		FaceMatchConfidence: getFloat(e.Properties, PropFaceMatchConfidence),
		StoredAt:            e.Timestamp,
	}, nil
}
