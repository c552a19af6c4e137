// Package fixtures provides test data factories for integration tests.
//
// Builders return models with sensible defaults, customised via option
// functions. The Factory additionally persists them through a repository.
//
// Usage:
//
//	f := fixtures.New(deviceRepo)
//	device := f.CreateDevice(t)
//	patron := fixtures.Patron(func(p *model.Patron) { p.Device = device.ID.String() })
package fixtures

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/forgo/dinmore/api/internal/model"
	"github.com/google/uuid"
)

// DeviceCreator persists devices
type DeviceCreator interface {
	Create(ctx context.Context, device *model.Device) error
}

// Factory creates test entities in the store
type Factory struct {
	devices DeviceCreator
}

// New creates a new fixture factory
func New(devices DeviceCreator) *Factory {
	return &Factory{devices: devices}
}

// ctx returns a context with timeout
func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

// ============================================================================
// Device Fixtures
// ============================================================================

// Device builds a device with a random id
func Device(opts ...func(*model.Device)) model.Device {
	id := uuid.New()
	d := model.Device{
		ID:      id,
		Label:   fmt.Sprintf("Kiosk-%s", id.String()[:8]),
		Exhibit: "Hall A",
		Venue:   "Museum",
	}
	for _, fn := range opts {
		fn(&d)
	}
	return d
}

// CreateDevice builds and stores a device
func (f *Factory) CreateDevice(t *testing.T, opts ...func(*model.Device)) model.Device {
	t.Helper()

	d := Device(opts...)
	if err := f.devices.Create(ctx(t), &d); err != nil {
		t.Fatalf("fixtures: failed to create device: %v", err)
	}
	return d
}

// ============================================================================
// Patron Fixtures
// ============================================================================

// SightingTime is the default observation time for patrons
var SightingTime = time.Date(2024, 3, 14, 10, 30, 0, 0, time.UTC)

// Patron builds a complete patron observation
func Patron(opts ...func(*model.Patron)) model.Patron {
	seen := SightingTime
	confidence := float32(0.87)
	p := model.Patron{
		PersistedFaceID: uuid.NewString(),
		Device:          uuid.NewString(),
		Exhibit:         "Hall A",
		FaceAttributes: model.FaceAttributes{
			Gender:  "female",
			Age:     34.2,
			Smile:   0.75,
			Glasses: "NoGlasses",
			Emotion: &model.EmotionScores{Happiness: 0.8, Neutral: 0.2},
		},
		Time:                &seen,
		FaceMatchConfidence: &confidence,
	}
	for _, fn := range opts {
		fn(&p)
	}
	return p
}

// Patrons builds n patrons sharing the given options
func Patrons(n int, opts ...func(*model.Patron)) []model.Patron {
	patrons := make([]model.Patron, n)
	for i := range patrons {
		patrons[i] = Patron(opts...)
	}
	return patrons
}

// WithoutTime clears the observation time
func WithoutTime(p *model.Patron) {
	p.Time = nil
}

// WithFace sets the persisted face id
func WithFace(faceID string) func(*model.Patron) {
	return func(p *model.Patron) {
		p.PersistedFaceID = faceID
	}
}

// WithAge sets the analysed age
func WithAge(age float64) func(*model.Patron) {
	return func(p *model.Patron) {
		p.FaceAttributes.Age = age
	}
}
